package walker

import (
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/abi"
	"github.com/saferwall/il2cppdump/internal/runtime"
)

var pinned [][]byte

func cString(s string) uintptr {
	buf := append([]byte(s), 0)
	pinned = append(pinned, buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

// buildFacade scripts a domain with a null assembly followed by a real one,
// whose image has a null class followed by two real classes, exercising
// both of the walk's skip rules in one pass.
func buildFacade(t *testing.T) *runtime.Facade {
	t.Helper()

	const (
		assemblyAddr = 0x2000
		imageAddr    = 0x3000
		classAAddr   = 0x4000
		classBAddr   = 0x4100
	)

	assemblies := []uintptr{0, assemblyAddr}

	domainGet := purego.NewCallback(func() uintptr { return 1 })
	domainGetAssemblies := purego.NewCallback(func(domain uintptr, size *uintptr) uintptr {
		*size = uintptr(len(assemblies))
		return uintptr(unsafe.Pointer(&assemblies[0]))
	})
	assemblyGetImage := purego.NewCallback(func(assembly uintptr) uintptr { return imageAddr })
	imageGetClassCount := purego.NewCallback(func(image uintptr) int32 { return 3 })
	imageGetClass := purego.NewCallback(func(image uintptr, index int32) uintptr {
		switch index {
		case 0:
			return 0
		case 1:
			return classAAddr
		default:
			return classBAddr
		}
	})

	nameA := cString("A")
	nameB := cString("B")
	classGetName := purego.NewCallback(func(klass uintptr) uintptr {
		if klass == classAAddr {
			return nameA
		}
		return nameB
	})
	emptyName := cString("")
	classGetNamespace := purego.NewCallback(func(klass uintptr) uintptr { return emptyName })
	classGetMethods := purego.NewCallback(func(klass uintptr, iter *uintptr) uintptr { return 0 })
	methodGetName := purego.NewCallback(func(method uintptr) uintptr { return emptyName })

	table := abi.WithAddrs(map[config.Slot]uintptr{
		config.SlotDomainGet:           domainGet,
		config.SlotDomainGetAssemblies: domainGetAssemblies,
		config.SlotAssemblyGetImage:    assemblyGetImage,
		config.SlotImageGetClassCount:  imageGetClassCount,
		config.SlotImageGetClass:       imageGetClass,
		config.SlotClassGetName:        classGetName,
		config.SlotClassGetNamespace:   classGetNamespace,
		config.SlotClassGetMethods:     classGetMethods,
		config.SlotMethodGetName:       methodGetName,
	})

	facade, err := runtime.NewFacade(table)
	require.NoError(t, err)
	return facade
}

func TestWalk_SkipsNullAssembliesAndClasses(t *testing.T) {
	facade := buildFacade(t)

	entries, err := Collect(facade)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	for _, e := range entries {
		assert.Equal(t, 1, e.AssemblyIndex)
	}

	names := make([]string, 0, 2)
	for _, e := range entries {
		name, err := facade.ClassGetName(e.Class)
		require.NoError(t, err)
		names = append(names, name)
	}
	assert.ElementsMatch(t, []string{"A", "B"}, names)
}

func TestWalkImages_SkipsNullAssembliesButIgnoresClassCount(t *testing.T) {
	facade := buildFacade(t)

	var entries []ImageEntry
	err := WalkImages(facade, func(e ImageEntry) error {
		entries = append(entries, e)
		return nil
	})
	require.NoError(t, err)

	// buildFacade scripts a null assembly followed by one real assembly;
	// WalkImages must yield exactly one entry regardless of how many
	// classes that assembly's image declares.
	require.Len(t, entries, 1)
	assert.Equal(t, 1, entries[0].AssemblyIndex)
}

func TestWalk_VisitErrorAborts(t *testing.T) {
	facade := buildFacade(t)

	called := 0
	err := Walk(facade, func(Entry) error {
		called++
		return assert.AnError
	})

	assert.Error(t, err)
	assert.Equal(t, 1, called)
}
