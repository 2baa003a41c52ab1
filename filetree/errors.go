// Copyright 2025 StrongDM Inc
// SPDX-License-Identifier: Apache-2.0

package filetree

import "errors"

// ErrNotADirectory is returned by Build when the supplied root does not
// exist or is not a directory.
var ErrNotADirectory = errors.New("filetree: not a directory")

// ErrPathNotInTree is returned by operations given a path that is neither
// the tree's root nor a descendant of it.
var ErrPathNotInTree = errors.New("filetree: path not in tree")
