// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package config loads optional flag defaults from an HCL file so a
// directory can pin its own cache path or similarity thresholds without
// repeating them on every invocation. CLI flags always win over whatever
// this file supplies.
package config

import (
	"os"

	"github.com/hashicorp/hcl/v2/hclsimple"
)

// DefaultFileName is the config file looked for in the current directory
// when --config is not given explicitly.
const DefaultFileName = ".albumarchitect.hcl"

// File is the decoded shape of an .albumarchitect.hcl document. Every
// field is optional; a zero value means "let the CLI flag default apply".
type File struct {
	CacheFile           string  `hcl:"cache_file,optional"`
	AnalyzeDuplicates   bool    `hcl:"analyze_duplicates,optional"`
	SimilarityThreshold float64 `hcl:"similarity_threshold,optional"`
	MaxNeighbours       int     `hcl:"max_neighbours,optional"`
}

// Load decodes path into a File. If path does not exist and was not
// explicitly requested (explicit reports whether the caller passed
// --config), a missing file is not an error and Load returns a zero File.
func Load(path string, explicit bool) (*File, error) {
	if _, err := os.Stat(path); err != nil {
		if !explicit {
			return &File{}, nil
		}
		return nil, err
	}

	var f File
	if err := hclsimple.DecodeFile(path, nil, &f); err != nil {
		return nil, err
	}
	return &f, nil
}
