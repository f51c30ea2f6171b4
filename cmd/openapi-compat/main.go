// Package main checks that the generated Drobeo API description stays
// backward compatible with a published baseline (for example the document the
// mobile client was built against).
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"drobeo/docs"
)

func main() {
	basePath := flag.String("base", "", "baseline swagger.yaml or swagger.json path")
	revisionPath := flag.String("revision", "", "revision document path (defaults to the generated docs package)")
	flag.Parse()

	if strings.TrimSpace(*basePath) == "" {
		fmt.Fprintln(os.Stderr, "usage: openapi-compat -base <path> [-revision <path>]")
		os.Exit(2)
	}

	baseSpec, err := loadFile(*basePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load base document: %v\n", err)
		os.Exit(1)
	}

	var revisionSpec apiSpec
	if *revisionPath != "" {
		revisionSpec, err = loadFile(*revisionPath)
	} else {
		revisionSpec, err = parseSpec([]byte(docs.SwaggerInfo.ReadDoc()))
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load revision document: %v\n", err)
		os.Exit(1)
	}

	issues := compare(baseSpec, revisionSpec)
	if len(issues) > 0 {
		fmt.Fprintln(os.Stderr, "backward compatibility check failed:")
		for _, issue := range issues {
			fmt.Fprintf(os.Stderr, "- %s\n", issue)
		}
		os.Exit(1)
	}

	fmt.Printf("openapi compatibility check passed (%d operations)\n", baseSpec.operationCount())
}

func loadFile(path string) (apiSpec, error) {
	// #nosec G304: path comes from CLI flags in a dev tool
	raw, err := os.ReadFile(path)
	if err != nil {
		return apiSpec{}, err
	}
	return parseSpec(raw)
}
