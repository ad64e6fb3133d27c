package main

import (
	"fmt"
	"io"
	"log"
	"os"
)

const rootUsage = `graphresolve: resolve GraphQL selection sets against schema-driven data

USAGE:
  graphresolve <command> [flags]

COMMANDS:
  exec             Execute a query against an SDL schema and a data fixture
  help             Show help for any command
`

const execUsage = `exec FLAGS:
  --schema <file>               GraphQL SDL file (required)
  --data <file>                 JSON or YAML fixture used as the query root
  --query <file>                GraphQL query document (required)
  --operation <name>            Operation to run when the document has several
  --variables <json>            Variable values as a JSON object
  --validate                    Validate the query against the schema first
  --introspection               Enable __schema and __type (default: true)
  --list-concurrency <n>        Resolve list items on up to n goroutines (default: 1)
  --pretty                      Pretty-print the JSON result
  --log.level <level>           debug, info, warn or error (default: info)
  --log.format <format>         text or json (default: text)
  --otel.endpoint <addr>        OTLP collector endpoint
  --otel.service <name>         OpenTelemetry service name (default: graphresolve)
  --config <file>               YAML config file with the same keys
  Every key can also be set as GRAPHRESOLVE_<KEY>, e.g. GRAPHRESOLVE_LOG_LEVEL.
`

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("missing command")
	}

	cmd := args[0]
	cmdArgs := args[1:]
	switch cmd {
	case "exec":
		return cmdExec(cmdArgs, stdout, stderr)
	case "help", "-h", "--help":
		return cmdHelp(cmdArgs, stdout)
	default:
		fmt.Fprint(stderr, rootUsage)
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func cmdHelp(args []string, stdout io.Writer) error {
	if len(args) == 0 {
		fmt.Fprint(stdout, rootUsage)
		return nil
	}
	switch args[0] {
	case "exec":
		fmt.Fprint(stdout, execUsage)
	default:
		return fmt.Errorf("unknown help topic %q", args[0])
	}
	return nil
}
