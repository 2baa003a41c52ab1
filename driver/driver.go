// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package driver wires the Path Graph, File Tree, Photo and Similarity
// layers together into the end-to-end analysis described by the CLI:
// load-or-build a File Tree, ingest every element in parallel, build the
// similarity index, answer the duplicate and query-image requests, and
// persist the enriched tree back to the cache.
package driver

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sort"
	"sync"

	"github.com/albumarchitect/core/filetree"
	"github.com/albumarchitect/core/hashes"
	"github.com/albumarchitect/core/imageloader"
	"github.com/albumarchitect/core/photo"
	"github.com/albumarchitect/core/similarity"
)

// Options configures one Run.
type Options struct {
	PhotosPath          string
	CacheFile           string
	AnalyzeDuplicates   bool
	CheckSimilars       []string
	SimilarityThreshold float64
	MaxNeighbours       int
}

// Run executes the full analysis described in the driver's responsibility
// section: load-or-build, parallel ingest, index build, duplicate and
// similarity queries, cache persistence, and report assembly.
func Run(ctx context.Context, opts Options) (*Report, error) {
	absRoot, err := resolveAbsRoot(opts.PhotosPath)
	if err != nil {
		return nil, err
	}

	tree, err := loadOrBuildTree(absRoot, opts.CacheFile)
	if err != nil {
		return nil, err
	}

	removed, err := tree.PruneMissing(pathExists)
	if err != nil {
		return nil, err
	}
	if len(removed) > 0 {
		slog.Info("[driver] pruned stale entries", "count", len(removed))
	}

	elements, err := tree.All()
	if err != nil {
		return nil, err
	}
	photosByID, builder := ingest(ctx, elements)
	search := builder.Build()

	report := newReport()

	if opts.AnalyzeDuplicates {
		report.Duplicates = duplicatesReport(search, photosByID)
	}

	threshold := opts.SimilarityThreshold
	if threshold == 0 {
		threshold = similarity.DefaultThreshold
	}
	maxK := opts.MaxNeighbours
	if maxK == 0 {
		maxK = similarity.DefaultMaxNeighbours
	}

	for _, queryPath := range opts.CheckSimilars {
		matches, err := similarsOfQueryImage(search, queryPath, threshold, maxK, photosByID)
		if err != nil {
			slog.Error("[driver] query image failed", "path", queryPath, "error", err)
			continue
		}
		report.Similars[queryPath] = matches
	}

	if err := saveCache(tree, opts.CacheFile); err != nil {
		slog.Error("[driver] failed to persist cache", "error", err)
	}

	return report, nil
}

// ingest runs the parallel analysis loop: a fixed pool of runtime.NumCPU()
// workers drains a buffered job channel of Elements, attempting
// photo.Load then Builder.AddPhoto for each. The mutex is acquired only
// around the shared-state mutation, never around the expensive decode or
// hash work.
func ingest(ctx context.Context, elements []filetree.Element) (map[similarity.PhotoId]filetree.Element, *similarity.Builder) {
	builder := similarity.NewBuilder()

	var mu sync.Mutex
	byID := make(map[similarity.PhotoId]filetree.Element)

	jobs := make(chan filetree.Element, len(elements))
	for _, el := range elements {
		if !el.IsDir() {
			jobs <- el
		}
	}
	close(jobs)

	workers := runtime.NumCPU()
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for el := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}

				p, err := photo.Load(el)
				if err != nil {
					slog.Debug("[driver] skipping element", "error", &DecodeFailure{Path: el.Path, Err: err})
					continue
				}

				id := builder.AddPhoto(p)
				if id == similarity.NoPhotoId {
					slog.Warn("[driver] hash unavailable", "error", &HashFailure{Path: el.Path, Alg: "perceptual", Err: fmt.Errorf("hash computation failed")})
					continue
				}

				mu.Lock()
				byID[id] = el
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	return byID, builder
}

func duplicatesReport(search *similarity.Search, byID map[similarity.PhotoId]filetree.Element) [][]string {
	groups := search.GetDuplicatedPhotos()
	out := make([][]string, 0, len(groups))
	for _, group := range groups {
		sort.Slice(group, func(i, j int) bool { return group[i] < group[j] })
		paths := make([]string, 0, len(group))
		for _, id := range group {
			if el, ok := byID[id]; ok {
				paths = append(paths, el.Path)
			}
		}
		out = append(out, paths)
	}
	return out
}

// queryHashSource adapts a standalone imageloader.Image (loaded from
// outside the tree, per the query-image contract) to similarity's
// hashSource interface without computing or caching anything in the
// filesystem's metadata.
type queryHashSource struct {
	img *imageloader.Image
}

func (q queryHashSource) GetImageHash(alg hashes.ImageAlgorithm) ([]byte, error) {
	return q.img.GetImageHash(alg)
}

func similarsOfQueryImage(search *similarity.Search, path string, threshold float64, maxK int, byID map[similarity.PhotoId]filetree.Element) ([]SimilarMatch, error) {
	img, err := imageloader.Load(path)
	if err != nil {
		return nil, fmt.Errorf("driver: load query image %s: %w", path, err)
	}

	matches := search.GetSimilarsOf(queryHashSource{img: img}, threshold, maxK)

	out := make([]SimilarMatch, 0, len(matches))
	for _, m := range matches {
		el, ok := byID[m.PhotoId]
		if !ok {
			continue
		}
		out = append(out, SimilarMatch{Path: el.Path, Similarity: m.Hamming})
	}
	return out, nil
}

func pathExists(path string) bool {
	return statExists(path)
}
