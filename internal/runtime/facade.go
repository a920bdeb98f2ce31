// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

// Package runtime is the Runtime API Facade (spec.md §4.3/§4.5): typed Go
// functions wrapping every IL2CPP thunk the Metadata Walker and the two
// emitters call, bound once at construction time via purego.RegisterFunc
// against raw addresses from the Function Table Binder — never by resolving
// an exported symbol name.
package runtime

import (
	"github.com/ebitengine/purego"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/abi"
)

// Facade exposes every bound IL2CPP operation as a typed Go method. A
// method backed by an absent slot returns FunctionNotFoundError instead of
// crashing the process, so callers can tell "this game build doesn't have
// this field" from "the walk hit a bug".
type Facade struct {
	domainGet           func() uintptr
	domainGetAssemblies func(domain uintptr, size *uintptr) uintptr
	assemblyGetImage    func(assembly uintptr) uintptr
	imageGetClassCount  func(image uintptr) int32
	imageGetClass       func(image uintptr, index int32) uintptr
	imageGetName        func(image uintptr) uintptr

	classGetMethods   func(klass uintptr, iter *uintptr) uintptr
	classGetFields    func(klass uintptr, iter *uintptr) uintptr
	classGetName      func(klass uintptr) uintptr
	classGetNamespace func(klass uintptr) uintptr
	classGetParent    func(klass uintptr) uintptr
	classIsValueType  func(klass uintptr) uintptr
	classIsEnum       func(klass uintptr) uintptr
	classGetFlags     func(klass uintptr) uint32
	classFromType     func(typ uintptr) uintptr

	fieldGetFlags  func(field uintptr) uint32
	fieldGetName   func(field uintptr) uintptr
	fieldGetOffset func(field uintptr) int32
	fieldGetType   func(field uintptr) uintptr

	methodGetName       func(method uintptr) uintptr
	methodGetReturnType func(method uintptr) uintptr
	methodGetParamCount func(method uintptr) uint32
	methodGetParam      func(method uintptr, index uint32) uintptr

	typeGetName  func(typ uintptr) uintptr
	typeIsByRef  func(typ uintptr) uintptr
	typeGetAttrs func(typ uintptr) uint32

	have map[config.Slot]bool
}

// bindFunc registers a typed func variable against the address bound to
// slot, if present. The zero value of T is returned, with ok=false, when
// the slot is unbound — the caller decides whether that is fatal.
func bindFunc[T any](table *abi.Table, slot config.Slot) (T, bool) {
	var fn T
	addr, ok := table.Lookup(slot)
	if !ok {
		return fn, false
	}
	purego.RegisterFunc(&fn, addr)
	return fn, true
}

// requiredSlots are the slots without which the walker cannot make any
// progress at all (spec.md §4.4's traversal plus enough of the class/method
// enumeration to identify a method's name and code pointer).
var requiredSlots = []config.Slot{
	config.SlotDomainGet,
	config.SlotDomainGetAssemblies,
	config.SlotAssemblyGetImage,
	config.SlotImageGetClassCount,
	config.SlotImageGetClass,
	config.SlotClassGetMethods,
	config.SlotClassGetName,
	config.SlotClassGetNamespace,
	config.SlotMethodGetName,
}

// NewFacade binds every known slot in table to a Facade method. It fails
// only if a required slot (see requiredSlots) is absent; optional slots are
// bound opportunistically and their absence surfaces per-call instead.
func NewFacade(table *abi.Table) (*Facade, error) {
	f := &Facade{have: make(map[config.Slot]bool)}

	markHave := func(slot config.Slot, ok bool) { f.have[slot] = ok }

	var ok bool
	f.domainGet, ok = bindFunc[func() uintptr](table, config.SlotDomainGet)
	markHave(config.SlotDomainGet, ok)
	f.domainGetAssemblies, ok = bindFunc[func(uintptr, *uintptr) uintptr](table, config.SlotDomainGetAssemblies)
	markHave(config.SlotDomainGetAssemblies, ok)
	f.assemblyGetImage, ok = bindFunc[func(uintptr) uintptr](table, config.SlotAssemblyGetImage)
	markHave(config.SlotAssemblyGetImage, ok)
	f.imageGetClassCount, ok = bindFunc[func(uintptr) int32](table, config.SlotImageGetClassCount)
	markHave(config.SlotImageGetClassCount, ok)
	f.imageGetClass, ok = bindFunc[func(uintptr, int32) uintptr](table, config.SlotImageGetClass)
	markHave(config.SlotImageGetClass, ok)
	f.imageGetName, ok = bindFunc[func(uintptr) uintptr](table, config.SlotImageGetName)
	markHave(config.SlotImageGetName, ok)

	f.classGetMethods, ok = bindFunc[func(uintptr, *uintptr) uintptr](table, config.SlotClassGetMethods)
	markHave(config.SlotClassGetMethods, ok)
	f.classGetFields, ok = bindFunc[func(uintptr, *uintptr) uintptr](table, config.SlotClassGetFields)
	markHave(config.SlotClassGetFields, ok)
	f.classGetName, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassGetName)
	markHave(config.SlotClassGetName, ok)
	f.classGetNamespace, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassGetNamespace)
	markHave(config.SlotClassGetNamespace, ok)
	f.classGetParent, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassGetParent)
	markHave(config.SlotClassGetParent, ok)
	f.classIsValueType, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassIsValueType)
	markHave(config.SlotClassIsValueType, ok)
	f.classIsEnum, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassIsEnum)
	markHave(config.SlotClassIsEnum, ok)
	f.classGetFlags, ok = bindFunc[func(uintptr) uint32](table, config.SlotClassGetFlags)
	markHave(config.SlotClassGetFlags, ok)
	f.classFromType, ok = bindFunc[func(uintptr) uintptr](table, config.SlotClassFromType)
	markHave(config.SlotClassFromType, ok)

	f.fieldGetFlags, ok = bindFunc[func(uintptr) uint32](table, config.SlotFieldGetFlags)
	markHave(config.SlotFieldGetFlags, ok)
	f.fieldGetName, ok = bindFunc[func(uintptr) uintptr](table, config.SlotFieldGetName)
	markHave(config.SlotFieldGetName, ok)
	f.fieldGetOffset, ok = bindFunc[func(uintptr) int32](table, config.SlotFieldGetOffset)
	markHave(config.SlotFieldGetOffset, ok)
	f.fieldGetType, ok = bindFunc[func(uintptr) uintptr](table, config.SlotFieldGetType)
	markHave(config.SlotFieldGetType, ok)

	f.methodGetName, ok = bindFunc[func(uintptr) uintptr](table, config.SlotMethodGetName)
	markHave(config.SlotMethodGetName, ok)
	f.methodGetReturnType, ok = bindFunc[func(uintptr) uintptr](table, config.SlotMethodGetReturnType)
	markHave(config.SlotMethodGetReturnType, ok)
	f.methodGetParamCount, ok = bindFunc[func(uintptr) uint32](table, config.SlotMethodGetParamCount)
	markHave(config.SlotMethodGetParamCount, ok)
	f.methodGetParam, ok = bindFunc[func(uintptr, uint32) uintptr](table, config.SlotMethodGetParam)
	markHave(config.SlotMethodGetParam, ok)

	f.typeGetName, ok = bindFunc[func(uintptr) uintptr](table, config.SlotTypeGetName)
	markHave(config.SlotTypeGetName, ok)
	f.typeIsByRef, ok = bindFunc[func(uintptr) uintptr](table, config.SlotTypeIsByRef)
	markHave(config.SlotTypeIsByRef, ok)
	f.typeGetAttrs, ok = bindFunc[func(uintptr) uint32](table, config.SlotTypeGetAttrs)
	markHave(config.SlotTypeGetAttrs, ok)

	for _, slot := range requiredSlots {
		if !f.have[slot] {
			return nil, &FunctionNotFoundError{Name: config.FunctionNames[slot]}
		}
	}

	return f, nil
}

func (f *Facade) require(slot config.Slot) error {
	if !f.have[slot] {
		return &FunctionNotFoundError{Name: config.FunctionNames[slot]}
	}
	return nil
}

// DomainGet returns the current application domain.
func (f *Facade) DomainGet() (DomainHandle, error) {
	if err := f.require(config.SlotDomainGet); err != nil {
		return 0, err
	}
	h := f.domainGet()
	if h == 0 {
		return 0, &ReturnedNullError{Name: "il2cpp_domain_get"}
	}
	return DomainHandle(h), nil
}

// DomainGetAssemblies returns every assembly handle registered in domain,
// including null entries the walker must skip per spec.md §4.4.
func (f *Facade) DomainGetAssemblies(domain DomainHandle) ([]AssemblyHandle, error) {
	if err := f.require(config.SlotDomainGetAssemblies); err != nil {
		return nil, err
	}
	var size uintptr
	arr := f.domainGetAssemblies(uintptr(domain), &size)
	if arr == 0 || size == 0 {
		return nil, nil
	}
	return readPointerArray[AssemblyHandle](arr, size), nil
}

// AssemblyGetImage returns the image contained in assembly.
func (f *Facade) AssemblyGetImage(assembly AssemblyHandle) (ImageHandle, error) {
	if err := f.require(config.SlotAssemblyGetImage); err != nil {
		return 0, err
	}
	h := f.assemblyGetImage(uintptr(assembly))
	if h == 0 {
		return 0, &ReturnedNullError{Name: "il2cpp_assembly_get_image"}
	}
	return ImageHandle(h), nil
}

// ImageGetClassCount returns the number of classes declared in image.
func (f *Facade) ImageGetClassCount(image ImageHandle) (int32, error) {
	if err := f.require(config.SlotImageGetClassCount); err != nil {
		return 0, err
	}
	return f.imageGetClassCount(uintptr(image)), nil
}

// ImageGetClass returns the class at index within image.
func (f *Facade) ImageGetClass(image ImageHandle, index int32) (ClassHandle, error) {
	if err := f.require(config.SlotImageGetClass); err != nil {
		return 0, err
	}
	return ClassHandle(f.imageGetClass(uintptr(image), index)), nil
}

// ImageGetName returns image's display name.
func (f *Facade) ImageGetName(image ImageHandle) (string, error) {
	if err := f.require(config.SlotImageGetName); err != nil {
		return "", err
	}
	return readCString(f.imageGetName(uintptr(image)))
}

// ClassGetMethods iterates klass's declared methods using the caller-owned
// cursor protocol spec.md §4.2's glossary describes: iter starts at 0 and is
// advanced in place until a null handle signals the end.
func (f *Facade) ClassGetMethods(klass ClassHandle) ([]MethodHandle, error) {
	if err := f.require(config.SlotClassGetMethods); err != nil {
		return nil, err
	}
	var out []MethodHandle
	var iter uintptr
	for {
		m := f.classGetMethods(uintptr(klass), &iter)
		if m == 0 {
			break
		}
		out = append(out, MethodHandle(m))
	}
	return out, nil
}

// ClassGetFields iterates klass's declared fields with the same cursor
// protocol as ClassGetMethods.
func (f *Facade) ClassGetFields(klass ClassHandle) ([]FieldHandle, error) {
	if err := f.require(config.SlotClassGetFields); err != nil {
		return nil, err
	}
	var out []FieldHandle
	var iter uintptr
	for {
		field := f.classGetFields(uintptr(klass), &iter)
		if field == 0 {
			break
		}
		out = append(out, FieldHandle(field))
	}
	return out, nil
}

// ClassGetName returns klass's unqualified name.
func (f *Facade) ClassGetName(klass ClassHandle) (string, error) {
	if err := f.require(config.SlotClassGetName); err != nil {
		return "", err
	}
	ptr := f.classGetName(uintptr(klass))
	if ptr == 0 {
		return "", &ReturnedNullError{Name: "il2cpp_class_get_name"}
	}
	return readCString(ptr)
}

// ClassGetNamespace returns klass's namespace, "" for the global namespace.
func (f *Facade) ClassGetNamespace(klass ClassHandle) (string, error) {
	if err := f.require(config.SlotClassGetNamespace); err != nil {
		return "", err
	}
	return readCString(f.classGetNamespace(uintptr(klass)))
}

// ClassGetParent returns klass's base class, or (0, nil) if klass has none.
func (f *Facade) ClassGetParent(klass ClassHandle) (ClassHandle, error) {
	if err := f.require(config.SlotClassGetParent); err != nil {
		return 0, err
	}
	return ClassHandle(f.classGetParent(uintptr(klass))), nil
}

// ClassIsValueType reports whether klass is a struct-like value type.
func (f *Facade) ClassIsValueType(klass ClassHandle) (bool, error) {
	if err := f.require(config.SlotClassIsValueType); err != nil {
		return false, err
	}
	return f.classIsValueType(uintptr(klass)) != 0, nil
}

// ClassIsEnum reports whether klass is an enum.
func (f *Facade) ClassIsEnum(klass ClassHandle) (bool, error) {
	if err := f.require(config.SlotClassIsEnum); err != nil {
		return false, err
	}
	return f.classIsEnum(uintptr(klass)) != 0, nil
}

// ClassGetFlags returns klass's ECMA-335 type attribute bitmask.
func (f *Facade) ClassGetFlags(klass ClassHandle) (uint32, error) {
	if err := f.require(config.SlotClassGetFlags); err != nil {
		return 0, err
	}
	return f.classGetFlags(uintptr(klass)), nil
}

// ClassFromType resolves a TypeHandle to the ClassHandle it names.
func (f *Facade) ClassFromType(typ TypeHandle) (ClassHandle, error) {
	if err := f.require(config.SlotClassFromType); err != nil {
		return 0, err
	}
	return ClassHandle(f.classFromType(uintptr(typ))), nil
}

// FieldGetFlags returns field's ECMA-335 field attribute bitmask.
func (f *Facade) FieldGetFlags(field FieldHandle) (uint32, error) {
	if err := f.require(config.SlotFieldGetFlags); err != nil {
		return 0, err
	}
	return f.fieldGetFlags(uintptr(field)), nil
}

// FieldGetName returns field's name.
func (f *Facade) FieldGetName(field FieldHandle) (string, error) {
	if err := f.require(config.SlotFieldGetName); err != nil {
		return "", err
	}
	return readCString(f.fieldGetName(uintptr(field)))
}

// FieldGetOffset returns field's byte offset within its declaring type.
func (f *Facade) FieldGetOffset(field FieldHandle) (int32, error) {
	if err := f.require(config.SlotFieldGetOffset); err != nil {
		return 0, err
	}
	return f.fieldGetOffset(uintptr(field)), nil
}

// FieldGetType returns field's declared type.
func (f *Facade) FieldGetType(field FieldHandle) (TypeHandle, error) {
	if err := f.require(config.SlotFieldGetType); err != nil {
		return 0, err
	}
	return TypeHandle(f.fieldGetType(uintptr(field))), nil
}

// MethodGetName returns method's name.
func (f *Facade) MethodGetName(method MethodHandle) (string, error) {
	if err := f.require(config.SlotMethodGetName); err != nil {
		return "", err
	}
	return readCString(f.methodGetName(uintptr(method)))
}

// MethodGetReturnType returns method's return type.
func (f *Facade) MethodGetReturnType(method MethodHandle) (TypeHandle, error) {
	if err := f.require(config.SlotMethodGetReturnType); err != nil {
		return 0, err
	}
	return TypeHandle(f.methodGetReturnType(uintptr(method))), nil
}

// MethodGetParamCount returns the number of parameters method declares.
func (f *Facade) MethodGetParamCount(method MethodHandle) (uint32, error) {
	if err := f.require(config.SlotMethodGetParamCount); err != nil {
		return 0, err
	}
	return f.methodGetParamCount(uintptr(method)), nil
}

// MethodGetParam returns the type of method's parameter at index.
func (f *Facade) MethodGetParam(method MethodHandle, index uint32) (TypeHandle, error) {
	if err := f.require(config.SlotMethodGetParam); err != nil {
		return 0, err
	}
	return TypeHandle(f.methodGetParam(uintptr(method), index)), nil
}

// TypeGetName returns typ's name, already rewritten from its BCL form to a
// C# keyword where one applies (e.g. "System.Int32" -> "int") and with any
// trailing by-ref marker stripped.
func (f *Facade) TypeGetName(typ TypeHandle) (string, error) {
	if err := f.require(config.SlotTypeGetName); err != nil {
		return "", err
	}
	raw, err := readCString(f.typeGetName(uintptr(typ)))
	if err != nil {
		return "", err
	}
	return rewriteTypeName(raw), nil
}

// TypeIsByRef reports whether typ is a by-reference type (ref/out/in
// parameter).
func (f *Facade) TypeIsByRef(typ TypeHandle) (bool, error) {
	if err := f.require(config.SlotTypeIsByRef); err != nil {
		return false, err
	}
	return f.typeIsByRef(uintptr(typ)) != 0, nil
}

// TypeGetAttrs returns typ's ECMA-335 parameter attribute bitmask (used to
// distinguish in/out/ref among by-ref parameters).
func (f *Facade) TypeGetAttrs(typ TypeHandle) (uint32, error) {
	if err := f.require(config.SlotTypeGetAttrs); err != nil {
		return 0, err
	}
	return f.typeGetAttrs(uintptr(typ)), nil
}
