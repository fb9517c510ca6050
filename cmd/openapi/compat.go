package main

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":     {},
	"put":     {},
	"post":    {},
	"delete":  {},
	"patch":   {},
	"head":    {},
	"options": {},
}

type operation struct {
	Responses map[string]struct{}
}

type parsedSpec struct {
	Paths map[string]map[string]operation
}

func loadSpec(path string) (parsedSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return parsedSpec{}, err
	}
	return parseSpec(raw)
}

func parseSpec(raw []byte) (parsedSpec, error) {
	doc := map[string]interface{}{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return parsedSpec{}, err
	}

	pathsRaw, ok := doc["paths"]
	if !ok {
		return parsedSpec{}, errors.New("missing top-level paths field")
	}
	pathsMap, ok := pathsRaw.(map[string]interface{})
	if !ok {
		return parsedSpec{}, errors.New("paths is not an object")
	}

	spec := parsedSpec{Paths: make(map[string]map[string]operation)}
	for pathKey, pathEntry := range pathsMap {
		methods, ok := pathEntry.(map[string]interface{})
		if !ok {
			continue
		}

		ops := make(map[string]operation)
		for methodKey, methodEntry := range methods {
			method := strings.ToLower(strings.TrimSpace(methodKey))
			if _, supported := supportedMethods[method]; !supported {
				continue
			}
			body, ok := methodEntry.(map[string]interface{})
			if !ok {
				continue
			}

			responses := make(map[string]struct{})
			if rs, ok := body["responses"].(map[string]interface{}); ok {
				for code := range rs {
					if c := strings.ToLower(strings.TrimSpace(code)); c != "" {
						responses[c] = struct{}{}
					}
				}
			}
			ops[method] = operation{Responses: responses}
		}

		if len(ops) > 0 {
			spec.Paths[pathKey] = ops
		}
	}
	return spec, nil
}

// compare lists every path, operation or response code present in base but
// missing from revision.
func compare(base, revision parsedSpec) []string {
	var issues []string

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s %s", strings.ToUpper(method), path))
				continue
			}
			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf(
						"removed response code: %s %s -> %s",
						strings.ToUpper(method), path, strings.ToUpper(code),
					))
				}
			}
		}
	}

	sort.Strings(issues)
	return issues
}
