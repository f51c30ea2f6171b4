package main

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var supportedMethods = map[string]struct{}{
	"get":    {},
	"put":    {},
	"post":   {},
	"delete": {},
	"patch":  {},
}

type operation struct {
	Responses map[string]struct{}
	Secured   bool
	// Required holds the names of required parameters.
	Required map[string]struct{}
}

type apiSpec struct {
	BasePath string
	Paths    map[string]map[string]operation
}

func (s apiSpec) operationCount() int {
	n := 0
	for _, ops := range s.Paths {
		n += len(ops)
	}
	return n
}

// rawDoc is the subset of a Swagger 2.0 document the check reads. JSON is
// valid YAML, so generated swagger.json documents parse the same way.
type rawDoc struct {
	BasePath string                              `yaml:"basePath"`
	Paths    map[string]map[string]rawOperation `yaml:"paths"`
}

type rawOperation struct {
	Security   []map[string][]string `yaml:"security"`
	Parameters []struct {
		Name     string `yaml:"name"`
		Required bool   `yaml:"required"`
	} `yaml:"parameters"`
	Responses map[string]any `yaml:"responses"`
}

func parseSpec(raw []byte) (apiSpec, error) {
	var doc rawDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return apiSpec{}, err
	}
	if doc.Paths == nil {
		return apiSpec{}, errors.New("missing top-level paths field")
	}

	spec := apiSpec{BasePath: doc.BasePath, Paths: make(map[string]map[string]operation)}
	for path, methods := range doc.Paths {
		ops := make(map[string]operation)
		for method, op := range methods {
			method = strings.ToLower(strings.TrimSpace(method))
			if _, ok := supportedMethods[method]; !ok {
				continue
			}
			parsed := operation{
				Responses: make(map[string]struct{}, len(op.Responses)),
				Required:  make(map[string]struct{}),
				Secured:   len(op.Security) > 0,
			}
			for code := range op.Responses {
				if code = strings.ToLower(strings.TrimSpace(code)); code != "" {
					parsed.Responses[code] = struct{}{}
				}
			}
			for _, p := range op.Parameters {
				if p.Required {
					parsed.Required[p.Name] = struct{}{}
				}
			}
			ops[method] = parsed
		}
		if len(ops) > 0 {
			spec.Paths[path] = ops
		}
	}
	return spec, nil
}

// compare lists the changes in revision that would break a client written
// against base.
func compare(base, revision apiSpec) []string {
	var issues []string

	if base.BasePath != revision.BasePath {
		issues = append(issues, fmt.Sprintf("changed basePath: %q -> %q", base.BasePath, revision.BasePath))
	}

	for path, baseOps := range base.Paths {
		revOps, ok := revision.Paths[path]
		if !ok {
			issues = append(issues, fmt.Sprintf("removed path: %s", path))
			continue
		}

		for method, baseOp := range baseOps {
			name := strings.ToUpper(method) + " " + path
			revOp, ok := revOps[method]
			if !ok {
				issues = append(issues, fmt.Sprintf("removed operation: %s", name))
				continue
			}

			for code := range baseOp.Responses {
				if _, ok := revOp.Responses[code]; !ok {
					issues = append(issues, fmt.Sprintf("removed response code: %s -> %s", name, strings.ToUpper(code)))
				}
			}
			for param := range revOp.Required {
				if _, ok := baseOp.Required[param]; !ok {
					issues = append(issues, fmt.Sprintf("new required parameter: %s -> %s", name, param))
				}
			}
			if revOp.Secured && !baseOp.Secured {
				issues = append(issues, fmt.Sprintf("now requires authentication: %s", name))
			}
		}
	}

	sort.Strings(issues)
	return issues
}
