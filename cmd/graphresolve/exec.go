package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/vektah/gqlparser/v2/ast"
	"gopkg.in/yaml.v3"

	dynamic "github.com/hanpama/graphresolve/internal/dynamic"
	eventbus "github.com/hanpama/graphresolve/internal/eventbus"
	executor "github.com/hanpama/graphresolve/internal/executor"
	introspection "github.com/hanpama/graphresolve/internal/introspection"
	language "github.com/hanpama/graphresolve/internal/language"
	logging "github.com/hanpama/graphresolve/internal/logging"
	otel "github.com/hanpama/graphresolve/internal/otel"
	schema "github.com/hanpama/graphresolve/internal/schema"
)

func cmdExec(args []string, stdout, stderr io.Writer) error {
	cfg, err := loadExecConfig(args, stderr)
	if err != nil {
		return err
	}
	ctx := context.Background()

	bus := eventbus.New()
	eventbus.Use(bus)
	defer eventbus.Use(nil)
	tel, err := otel.Setup(ctx, otel.Config{Endpoint: cfg.Otel.Endpoint, Service: cfg.Otel.Service}, bus)
	if err != nil {
		return fmt.Errorf("otel setup: %w", err)
	}
	defer func() { _ = tel.Shutdown(context.Background()) }()

	logger := logging.NewLogger(logging.Config{
		Level:          cfg.Log.Level,
		Format:         cfg.Log.Format,
		Output:         stderr,
		LoggerProvider: tel.LoggerProvider,
	})
	ctx = logging.WithLogger(ctx, logger)

	sdl, err := os.ReadFile(cfg.Schema)
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	astSchema, err := language.LoadSchema(&ast.Source{Name: cfg.Schema, Input: string(sdl)})
	if err != nil {
		return fmt.Errorf("load schema: %w", err)
	}
	sch := schema.FromAST(astSchema)

	query, err := os.ReadFile(cfg.Query)
	if err != nil {
		return fmt.Errorf("read query: %w", err)
	}
	var doc *language.QueryDocument
	if cfg.Validate {
		doc, err = language.LoadQuery(astSchema, string(query))
	} else {
		doc, err = language.ParseQuery(string(query))
	}
	if err != nil {
		return fmt.Errorf("query: %w", err)
	}

	variables, err := decodeVariables(cfg.Variables)
	if err != nil {
		return err
	}
	fixture, err := loadFixture(cfg.Data)
	if err != nil {
		return err
	}

	var rt dynamic.Runtime = dynamic.NewResolvers(sch)
	if cfg.Introspection {
		wrapper := introspection.Wrap(rt, sch)
		rt = wrapper.Runtime
		sch = wrapper.Schema
	}

	exec := executor.New(sch,
		executor.WithListConcurrency(cfg.ListConcurrency),
		executor.WithLogger(logger),
	)
	logger.Debug("executing", "query", cfg.Query, "operation", cfg.Operation)
	res, err := exec.Execute(ctx, executor.Request{
		Document:      doc,
		OperationName: cfg.Operation,
		Variables:     variables,
		Root:          dynamic.NewRoot(rt, sch, sch.QueryType, fixture),
	})
	if err != nil {
		return err
	}
	logger.Info("execution finished", "outcome", string(res.Outcome()), "errors", len(res.Errors))
	return writeResult(stdout, res, cfg.Pretty)
}

func decodeVariables(raw string) (map[string]any, error) {
	if raw == "" {
		return nil, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	dec.UseNumber()
	var vars map[string]any
	if err := dec.Decode(&vars); err != nil {
		return nil, fmt.Errorf("--variables: %w", err)
	}
	return vars, nil
}

// loadFixture reads the root value. YAML is a superset of JSON, so one
// decoder serves both formats.
func loadFixture(path string) (map[string]any, error) {
	if path == "" {
		return map[string]any{}, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read data: %w", err)
	}
	var data map[string]any
	if err := yaml.Unmarshal(b, &data); err != nil {
		return nil, fmt.Errorf("decode data %s: %w", path, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}

func writeResult(w io.Writer, res *executor.ExecutionResult, pretty bool) error {
	var (
		b   []byte
		err error
	)
	if pretty {
		b, err = json.MarshalIndent(res, "", "  ")
	} else {
		b, err = json.Marshal(res)
	}
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = fmt.Fprintln(w, string(b))
	return err
}
