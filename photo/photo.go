// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

// Package photo ties a filetree.Element to a lazily loaded image and its
// cached hashes, recording a small sticky-error state machine as node
// metadata so that a second run over a cached tree does not redecode a file
// it already knows is unreadable.
package photo

import (
	"fmt"
	"image"
	"strings"
	"sync"

	"github.com/albumarchitect/core/filetree"
	"github.com/albumarchitect/core/hashes"
	"github.com/albumarchitect/core/imageloader"
	"github.com/albumarchitect/core/pathgraph"
)

// State is a Photo's position in the load/hash state machine.
type State string

const (
	NoInfo State = "no_info"
	OK     State = "ok"
	Error  State = "error"
)

// stateKey is the reserved metadata key storing a node's State as text.
const stateKey = "_PHOTO_STATE_"

// hashKeyPrefix namespaces perceptual/cryptographic hash metadata keys.
const hashKeyPrefix = "HASH_"

func hashKey(alg hashes.ImageAlgorithm) string {
	return hashKeyPrefix + strings.ToUpper(string(alg))
}

// Photo wraps one filetree.Element with a lazily decoded image.
type Photo struct {
	element filetree.Element

	mu    sync.Mutex
	image *imageloader.Image
}

// currentState reads the element's sticky state, defaulting to NoInfo if
// unset.
func currentState(el filetree.Element) State {
	v, ok := el.GetMetadata(stateKey)
	if !ok {
		return NoInfo
	}
	s, _ := v.AsString()
	return State(s)
}

func setState(el filetree.Element, s State) {
	el.SetMetadata(stateKey, pathgraph.StringAttribute(string(s)))
}

// Load returns a Photo for el, or an error if el's path does not look like
// a decodable image. If el was previously marked Error, Load fails
// immediately without re-probing the file.
func Load(el filetree.Element) (*Photo, error) {
	switch currentState(el) {
	case Error:
		return nil, fmt.Errorf("photo: %s: previously failed to load", el.Path)
	case OK:
		return &Photo{element: el}, nil
	}

	if !imageloader.CheckPathIsImage(el.Path) {
		setState(el, Error)
		return nil, fmt.Errorf("photo: %s: not a decodable image", el.Path)
	}

	setState(el, OK)
	return &Photo{element: el}, nil
}

// Element returns the underlying filetree.Element.
func (p *Photo) Element() filetree.Element {
	return p.element
}

// GetImage decodes the backing file on first call and caches the result.
// A decode failure flips the element's state to Error (sticky) and is
// returned to the caller.
func (p *Photo) GetImage() (image.Image, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.image != nil {
		return p.image.Pixels(), nil
	}

	img, err := imageloader.Load(p.element.Path)
	if err != nil {
		setState(p.element, Error)
		return nil, err
	}
	p.image = img
	return img.Pixels(), nil
}

// IsImageHashInCache reports whether alg's hash is already stored as
// metadata, without touching the decoded image.
func (p *Photo) IsImageHashInCache(alg hashes.ImageAlgorithm) bool {
	_, ok := p.element.GetMetadata(hashKey(alg))
	return ok
}

// GetImageHash returns the cached perceptual hash under alg if present;
// otherwise it decodes the image (if needed), computes the hash, stores it
// as metadata, and returns it. A computation failure flips the element to
// Error and is returned to the caller.
func (p *Photo) GetImageHash(alg hashes.ImageAlgorithm) ([]byte, error) {
	if v, ok := p.element.GetMetadata(hashKey(alg)); ok {
		if m, ok := v.AsMatrix(); ok {
			return m.Data, nil
		}
	}

	if _, err := p.GetImage(); err != nil {
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	h, err := p.image.GetImageHash(alg)
	if err != nil {
		setState(p.element, Error)
		return nil, fmt.Errorf("photo: %s: hash %s: %w", p.element.Path, alg, err)
	}

	p.element.SetMetadata(hashKey(alg), pathgraph.MatrixAttribute(pathgraph.Matrix{
		Width:       uint32(len(h)),
		Height:      1,
		ElementType: "byte",
		ElementSize: 1,
		Data:        h,
	}))
	return h, nil
}
