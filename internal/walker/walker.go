// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package walker implements the Metadata Walker (spec.md §4.4): the fixed
// domain -> assemblies -> images -> classes traversal every emitter builds
// on, with the exact null-handling rules spec.md specifies.
package walker

import (
	"github.com/saferwall/il2cppdump/internal/runtime"
)

// Entry is one class reached by the walk, tagged with the index of the
// assembly it came from.
type Entry struct {
	AssemblyIndex int
	Image         runtime.ImageHandle
	Class         runtime.ClassHandle
}

// Visit is called once per Entry the walk discovers. Returning an error
// aborts the walk and the error is returned from Walk.
type Visit func(Entry) error

// Walk performs domain_get -> domain_get_assemblies -> for each non-null
// assembly, assembly_get_image -> image_get_class_count/image_get_class,
// invoking visit for every non-null class handle found.
//
// A null assembly entry is silently skipped (spec.md §4.4's "assemblies
// array may contain null entries" note). A null image for a non-null
// assembly is not skippable — every loaded assembly has exactly one image
// — so it is surfaced as the facade's ReturnedNullError. A null class
// entry within an image is skipped, matching the assemblies-array rule.
func Walk(f *runtime.Facade, visit Visit) error {
	domain, err := f.DomainGet()
	if err != nil {
		return err
	}

	assemblies, err := f.DomainGetAssemblies(domain)
	if err != nil {
		return err
	}

	for i, asm := range assemblies {
		if asm == 0 {
			continue
		}

		image, err := f.AssemblyGetImage(asm)
		if err != nil {
			return err
		}

		count, err := f.ImageGetClassCount(image)
		if err != nil {
			return err
		}

		for j := int32(0); j < count; j++ {
			class, err := f.ImageGetClass(image, j)
			if err != nil {
				return err
			}
			if class == 0 {
				continue
			}

			if err := visit(Entry{AssemblyIndex: i, Image: image, Class: class}); err != nil {
				return err
			}
		}
	}

	return nil
}

// ImageEntry pairs an image with the index of the assembly it came from,
// independent of how many classes (if any) that image declares.
type ImageEntry struct {
	AssemblyIndex int
	Image         runtime.ImageHandle
}

// WalkImages performs domain_get -> domain_get_assemblies -> for each
// non-null assembly, assembly_get_image, invoking visit once per assembly
// regardless of how many classes its image declares. The Pseudo-Source
// Emitter uses this for its Image-header section (spec.md §4.6), which
// lists every assembly whether or not its image contributes any classes.
func WalkImages(f *runtime.Facade, visit func(ImageEntry) error) error {
	domain, err := f.DomainGet()
	if err != nil {
		return err
	}

	assemblies, err := f.DomainGetAssemblies(domain)
	if err != nil {
		return err
	}

	for i, asm := range assemblies {
		if asm == 0 {
			continue
		}

		image, err := f.AssemblyGetImage(asm)
		if err != nil {
			return err
		}

		if err := visit(ImageEntry{AssemblyIndex: i, Image: image}); err != nil {
			return err
		}
	}

	return nil
}

// Collect runs Walk and returns every Entry it discovers, for callers that
// prefer a slice over a callback (the two emitters each do their own
// callback-driven work instead, but tests and simpler tools can use this).
func Collect(f *runtime.Facade) ([]Entry, error) {
	var out []Entry
	err := Walk(f, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
