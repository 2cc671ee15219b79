package main

import (
	"fmt"
	"os"

	"github.com/debemdeboas/blogctl/internal/config"
	"gopkg.in/yaml.v3"
)

func main() {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)

	yamlData, err := yaml.Marshal(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating YAML: %v\n", err)
		os.Exit(1)
	}

	header := "# blogctl configuration example\n" +
		"# Copy this file to config.yaml, or point " + config.EnvConfigPath + " at it.\n" +
		"# S3 credentials for backups come from " + config.EnvS3AccessKeyID + " and " + config.EnvS3SecretAccessKey + ".\n\n"
	output := header + string(yamlData)

	outputFile := "config.example.yaml"
	if len(os.Args) > 1 {
		outputFile = os.Args[1]
	}

	if outputFile == "-" {
		fmt.Print(output)
		return
	}
	if err := os.WriteFile(outputFile, []byte(output), 0644); err != nil {
		fmt.Fprintf(os.Stderr, config.ErrWriteConfigContentFmt+"\n", err)
		os.Exit(1)
	}
	fmt.Printf("Generated example config: %s\n", outputFile)
}
