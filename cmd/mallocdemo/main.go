// Command mallocdemo exercises a mallocator.Allocator through the
// same scenarios the original C test harness ran against my_malloc:
// basic allocation, an mmap-threshold allocation, array read/write,
// a random-allocation stress pass, edge cases and coalescing. It is
// an external collaborator: it only ever calls the five public
// Allocator operations.
package main

import (
	"fmt"
	"math/rand"
	"os"

	"github.com/Spyrosmaicho/mallocator"
)

const (
	colorGreen = "\033[0;32m"
	colorRed   = "\033[0;31m"
	colorReset = "\033[0m"
)

func header(description string) {
	fmt.Printf("\n%s----- %s -----%s\n", colorGreen, description, colorReset)
}

func result(label string, passed bool) {
	status := colorGreen + "[PASSED]" + colorReset
	if !passed {
		status = colorRed + "[FAILED]" + colorReset
	}
	fmt.Printf("%s: %s\n", label, status)
}

func testBasicAllocation(a *mallocator.Allocator) {
	header("Basic Allocation Test")

	b, err := a.Alloc(100)
	result("Allocation of 100 bytes", err == nil && b != nil)
	if b != nil {
		result("Free operation", a.Free(b) == nil)
	}
}

func testLargeMmapAllocation(a *mallocator.Allocator) {
	header("Large mmap Allocation Test")

	b, err := a.Alloc(4097) // crosses the mmap threshold
	result("mmap allocation (4097 bytes)", err == nil && b != nil)
	if b != nil {
		result("mmap free operation", a.Free(b) == nil)
	}
}

func testArrayAllocation(a *mallocator.Allocator) {
	header("Array Allocation Test")

	b, err := a.Alloc(100 * 4)
	ok := err == nil && b != nil
	result("Array allocation (100 ints)", ok)
	if !ok {
		return
	}

	ints := make([]int32, 100)
	for i := range ints {
		ints[i] = int32(i)
		putInt32(b, i, int32(i))
	}

	readOK := true
	for i := range ints {
		if getInt32(b, i) != int32(i) {
			readOK = false
			break
		}
	}
	result("Array read/write test", readOK)

	_ = a.Free(b)
}

func putInt32(b []byte, idx int, v int32) {
	off := idx * 4
	b[off] = byte(v)
	b[off+1] = byte(v >> 8)
	b[off+2] = byte(v >> 16)
	b[off+3] = byte(v >> 24)
}

func getInt32(b []byte, idx int) int32 {
	off := idx * 4
	return int32(b[off]) | int32(b[off+1])<<8 | int32(b[off+2])<<16 | int32(b[off+3])<<24
}

func testRandomAllocations(a *mallocator.Allocator) {
	header("Random Allocation Stress Test")

	const numAllocs = 100
	rng := rand.New(rand.NewSource(42))

	pointers := make([][]byte, numAllocs)
	for i := range pointers {
		size := uint(2*i + 1)
		b, err := a.Alloc(size)
		if err != nil || b == nil {
			fmt.Printf("Failed allocation at iteration %d\n", i)
			result("Allocated random blocks", false)
			return
		}
		for j := range b {
			b[j] = 0xFF
		}
		pointers[i] = b
	}
	result(fmt.Sprintf("Allocated %d random blocks", numAllocs), true)

	for i := 0; i < numAllocs/2; i++ {
		var idx int
		for {
			idx = rng.Intn(numAllocs)
			if pointers[idx] != nil {
				break
			}
		}
		_ = a.Free(pointers[idx])
		pointers[idx] = nil
	}
	result("Freed half of blocks randomly", true)

	allocated := 0
	for i := 0; i < numAllocs && allocated < numAllocs/4; i++ {
		if pointers[i] != nil {
			continue
		}
		b, err := a.Alloc(uint(2*i + 1))
		if err != nil || b == nil {
			fmt.Printf("Failed re-allocation at iteration %d\n", i)
			result("Re-allocated some blocks", false)
			return
		}
		pointers[i] = b
		allocated++
	}
	result("Re-allocated some blocks", true)

	for i, p := range pointers {
		if p != nil {
			_ = a.Free(p)
			pointers[i] = nil
		}
	}
	result("Freed all remaining blocks", true)

	fmt.Println(a.Stats())
}

func testEdgeCases(a *mallocator.Allocator) {
	header("Edge Case Tests")

	b, _ := a.Alloc(0)
	result("Zero-size allocation (should fail)", b == nil)

	huge, _ := a.Alloc(^uint(0) / 2)
	result("Huge allocation (should fail)", huge == nil)

	result("Free nil slice (should handle gracefully)", a.Free(nil) == nil)

	dptr, err := a.Alloc(100)
	if err == nil && dptr != nil {
		_ = a.Free(dptr)
		result("Double free detection (should handle gracefully)", a.Free(dptr) == nil)
	}
}

func testCoalescing(a *mallocator.Allocator) {
	header("Coalescing Test")

	p1, err1 := a.Alloc(100)
	p2, err2 := a.Alloc(100)
	p3, err3 := a.Alloc(100)
	if err1 != nil || err2 != nil || err3 != nil || p1 == nil || p2 == nil || p3 == nil {
		result("Coalescing setup", false)
		return
	}

	fmt.Println("Memory stats after allocations:")
	fmt.Println(a.Stats())

	_ = a.Free(p2)
	fmt.Println("Freed middle block:")
	fmt.Println(a.Stats())

	_ = a.Free(p1)
	fmt.Println("Freed first block (should coalesce):")
	fmt.Println(a.Stats())

	_ = a.Free(p3)
	fmt.Println("Freed last block (should coalesce):")
	fmt.Println(a.Stats())

	result("Coalescing", true)
}

func main() {
	fmt.Printf("%sStarting Memory Allocator Test Suite%s\n", colorGreen, colorReset)

	a := mallocator.New()
	defer a.Close()

	testBasicAllocation(a)
	testLargeMmapAllocation(a)
	testArrayAllocation(a)
	testRandomAllocations(a)
	testEdgeCases(a)
	testCoalescing(a)

	fmt.Printf("\n%sAll tests completed!%s\n", colorGreen, colorReset)
	os.Exit(0)
}
