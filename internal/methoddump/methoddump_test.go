package methoddump

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"unsafe"

	"github.com/ebitengine/purego"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saferwall/il2cppdump/config"
	"github.com/saferwall/il2cppdump/internal/abi"
	"github.com/saferwall/il2cppdump/internal/modloader"
	"github.com/saferwall/il2cppdump/internal/runtime"
	"github.com/saferwall/il2cppdump/internal/xlog"
)

var pinned [][]byte

func cString(s string) uintptr {
	buf := append([]byte(s), 0)
	pinned = append(pinned, buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

// methodRecordBuf builds a fake MethodInfo struct laid out per rec, with the
// given code pointer, and pins it for the test's lifetime.
func methodRecordBuf(rec config.MethodRecord, codePointer uintptr) uintptr {
	size := rec.CodePointerOffset + 8
	if rec.FlagsOffset+4 > size {
		size = rec.FlagsOffset + 4
	}
	buf := make([]byte, size)
	binary.LittleEndian.PutUint64(buf[rec.CodePointerOffset:], uint64(codePointer))
	pinned = append(pinned, buf)
	return uintptr(unsafe.Pointer(&buf[0]))
}

func TestEmit_DedupesAndBoundsChecks(t *testing.T) {
	rec := config.Default().MethodRecord
	const gameBase = 0x10000
	const gameSize = 0x1000

	// Two methods named Tick on class Player (duplicate), one method
	// Jump whose code pointer falls outside the game module.
	m1 := methodRecordBuf(rec, gameBase+0x10)
	m2 := methodRecordBuf(rec, gameBase+0x20)
	m3 := methodRecordBuf(rec, 0x999999) // outside bounds

	methods := []uintptr{m1, m2, m3}
	methodIdx := 0

	domainGet := purego.NewCallback(func() uintptr { return 1 })
	assemblies := []uintptr{0x2000}
	domainGetAssemblies := purego.NewCallback(func(domain uintptr, size *uintptr) uintptr {
		*size = 1
		return uintptr(unsafe.Pointer(&assemblies[0]))
	})
	assemblyGetImage := purego.NewCallback(func(assembly uintptr) uintptr { return 0x3000 })
	imageGetClassCount := purego.NewCallback(func(image uintptr) int32 { return 1 })
	imageGetClass := purego.NewCallback(func(image uintptr, index int32) uintptr { return 0x4000 })

	classNamePtr := cString("Player")
	namespacePtr := cString("Game")
	classGetName := purego.NewCallback(func(klass uintptr) uintptr { return classNamePtr })
	classGetNamespace := purego.NewCallback(func(klass uintptr) uintptr { return namespacePtr })

	classGetMethods := purego.NewCallback(func(klass uintptr, iter *uintptr) uintptr {
		if methodIdx >= len(methods) {
			return 0
		}
		m := methods[methodIdx]
		methodIdx++
		return m
	})

	tickName := cString("Tick")
	jumpName := cString("Jump")
	methodGetName := purego.NewCallback(func(method uintptr) uintptr {
		if method == m3 {
			return jumpName
		}
		return tickName
	})

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

	game := &modloader.Module{Base: gameBase, Size: gameSize}
	outDir := t.TempDir()
	log := xlog.NewHelper(xlog.NewFilter(xlog.NewStdLogger(os.Stderr)))

	result, err := Emit(facade, game, rec, outDir, log)
	require.NoError(t, err)
	assert.Equal(t, 2, result.ValidMethods)

	data, err := os.ReadFile(filepath.Join(outDir, "methods.json"))
	require.NoError(t, err)

	var offsets map[string]string
	require.NoError(t, json.Unmarshal(data, &offsets))

	assert.Contains(t, offsets, "Game.Player::Tick")
	assert.Contains(t, offsets, "Game.Player::Tick_0")
	assert.NotContains(t, offsets, "Game.Player::Jump")
	assert.Equal(t, "0x10", offsets["Game.Player::Tick"])
	assert.Equal(t, "0x20", offsets["Game.Player::Tick_0"])
}

func TestQualifiedName_OmitsDotForGlobalNamespace(t *testing.T) {
	assert.Equal(t, "Player::Tick", qualifiedName("", "Player", "Tick"))
	assert.Equal(t, "Game.Player::Tick", qualifiedName("Game", "Player", "Tick"))
}

func TestEmit_PreservesWalkOrderInOutput(t *testing.T) {
	rec := config.Default().MethodRecord
	const gameBase = 0x10000
	const gameSize = 0x1000

	mZ := methodRecordBuf(rec, gameBase+0x30)
	mA := methodRecordBuf(rec, gameBase+0x10)
	methods := []uintptr{mZ, mA}
	methodIdx := 0

	domainGet := purego.NewCallback(func() uintptr { return 1 })
	assemblies := []uintptr{0x2000}
	domainGetAssemblies := purego.NewCallback(func(domain uintptr, size *uintptr) uintptr {
		*size = 1
		return uintptr(unsafe.Pointer(&assemblies[0]))
	})
	assemblyGetImage := purego.NewCallback(func(assembly uintptr) uintptr { return 0x3000 })
	imageGetClassCount := purego.NewCallback(func(image uintptr) int32 { return 1 })
	imageGetClass := purego.NewCallback(func(image uintptr, index int32) uintptr { return 0x4000 })

	classNamePtr := cString("Player")
	namespacePtr := cString("Game")
	classGetName := purego.NewCallback(func(klass uintptr) uintptr { return classNamePtr })
	classGetNamespace := purego.NewCallback(func(klass uintptr) uintptr { return namespacePtr })

	classGetMethods := purego.NewCallback(func(klass uintptr, iter *uintptr) uintptr {
		if methodIdx >= len(methods) {
			return 0
		}
		m := methods[methodIdx]
		methodIdx++
		return m
	})

	nameZ := cString("Zebra")
	nameA := cString("Apple")
	methodGetName := purego.NewCallback(func(method uintptr) uintptr {
		if method == mZ {
			return nameZ
		}
		return nameA
	})

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

	game := &modloader.Module{Base: gameBase, Size: gameSize}
	outDir := t.TempDir()
	log := xlog.NewHelper(xlog.NewFilter(xlog.NewStdLogger(os.Stderr)))

	_, err = Emit(facade, game, rec, outDir, log)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(outDir, "methods.json"))
	require.NoError(t, err)

	zebraIdx := bytes.Index(data, []byte("Zebra"))
	appleIdx := bytes.Index(data, []byte("Apple"))
	require.NotEqual(t, -1, zebraIdx)
	require.NotEqual(t, -1, appleIdx)
	assert.Less(t, zebraIdx, appleIdx, "methods.json should preserve walk order, not alphabetical order")
}

func TestSanitize_ReplacesSpecialChars(t *testing.T) {
	assert.Equal(t, "List_1", sanitize("List`1"))
	assert.Equal(t, "Foo_Bar_", sanitize("Foo<Bar>"))
}

func TestDedupe_FirstOccurrenceBare(t *testing.T) {
	seen := make(map[string]int)
	assert.Equal(t, "X", dedupe("X", seen))
	assert.Equal(t, "X_0", dedupe("X", seen))
	assert.Equal(t, "X_1", dedupe("X", seen))
}
