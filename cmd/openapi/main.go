// Command openapi exports the registered swagger document as YAML and checks
// that a revision stays backward compatible with a base document.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"

	"vidtube/docs"

	"github.com/swaggo/swag"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "export":
		fs := flag.NewFlagSet("export", flag.ExitOnError)
		out := fs.String("out", "swagger.yaml", "output path, - for stdout")
		_ = fs.Parse(os.Args[2:])
		if err := export(*out); err != nil {
			fmt.Fprintf(os.Stderr, "export failed: %v\n", err)
			os.Exit(1)
		}
	case "compat":
		fs := flag.NewFlagSet("compat", flag.ExitOnError)
		basePath := fs.String("base", "", "base OpenAPI swagger.yaml path")
		revisionPath := fs.String("revision", "", "revision OpenAPI swagger.yaml path")
		_ = fs.Parse(os.Args[2:])
		if strings.TrimSpace(*basePath) == "" || strings.TrimSpace(*revisionPath) == "" {
			usage()
			os.Exit(2)
		}
		os.Exit(runCompat(*basePath, *revisionPath))
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage:")
	fmt.Fprintln(os.Stderr, "  openapi export [-out swagger.yaml]")
	fmt.Fprintln(os.Stderr, "  openapi compat -base <path> -revision <path>")
}

// renderYAML converts the registered JSON document to YAML.
func renderYAML() ([]byte, error) {
	raw, err := swag.ReadDoc(docs.SwaggerInfo.InstanceName())
	if err != nil {
		return nil, fmt.Errorf("read swagger doc: %w", err)
	}
	var doc map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("decode swagger doc: %w", err)
	}
	return yaml.Marshal(doc)
}

func export(out string) error {
	data, err := renderYAML()
	if err != nil {
		return err
	}
	if out == "-" {
		_, err = os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(out, data, 0o644) // #nosec G306: generated public API doc
}

func runCompat(basePath, revisionPath string) int {
	baseSpec, err := loadSpec(basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base spec: %v\n", err)
		return 1
	}
	revisionSpec, err := loadSpec(revisionPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision spec: %v\n", err)
		return 1
	}

	issues := compare(baseSpec, revisionSpec)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		return 1
	}

	fmt.Println("openapi compatibility check passed")
	return 0
}
