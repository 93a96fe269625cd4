package xalloc

import (
	"testing"
)

func TestClassifySmallestSufficientClass(t *testing.T) {
	a, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Destroy()

	cases := []struct {
		request int
		class   int
	}{
		{0, 8},
		{4, 8},
		{5, 16},
		{12, 16},
		{13, 32},
		{60, 64},
		{252, 256},
		{253, 396}, // the 396 threshold absorbs what would waste half a 512 block
		{392, 396},
		{393, 512},
		{509, 768},
		{764, 768},
		{765, 1024},
		{65532, 65536},
	}
	for _, c := range cases {
		ci := a.classIndex(c.request)
		if ci < 0 {
			t.Fatalf("classify(%v) found no class", c.request)
		}
		if got := a.classes[ci].Size; got != c.class {
			t.Fatalf("classify(%v): %v != %v", c.request, got, c.class)
		}
	}
}

func TestClassifyMonotonic(t *testing.T) {
	a, err := New(Config{})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Destroy()

	prev := 0
	for n := 0; n <= 70000; n++ {
		ci := a.classIndex(n)
		if n+HeaderSize > 65536 {
			if ci >= 0 {
				t.Fatalf("classify(%v) found a class beyond the table", n)
			}
			break
		}
		size := a.classes[ci].Size
		if size < n+HeaderSize {
			t.Fatalf("classify(%v) chose %v, too small", n, size)
		}
		if size < prev {
			t.Fatalf("classify not monotonic at %v: %v < %v", n, size, prev)
		}
		prev = size
	}
}

func TestCustomClassTable(t *testing.T) {
	a, err := New(Config{Classes: []ClassConfig{{Size: 16}, {Size: 64}, {Size: 256}}})
	if err != nil {
		t.Fatal(err)
	}
	defer a.Destroy()

	if ci := a.classIndex(10); a.classes[ci].Size != 16 {
		t.Fatalf("classify(10) in {16,64,256}: %v", a.classes[ci].Size)
	}
	if ci := a.classIndex(40); a.classes[ci].Size != 64 {
		t.Fatalf("classify(40) in {16,64,256}: %v", a.classes[ci].Size)
	}
	if ci := a.classIndex(400); ci >= 0 {
		t.Fatal("classify(400) should find no class in {16,64,256}")
	}
}

func TestClassTableValidation(t *testing.T) {
	if _, err := New(Config{Classes: []ClassConfig{}}); err == nil {
		t.Fatal("empty table accepted")
	}
	if _, err := New(Config{Classes: []ClassConfig{{Size: 4}}}); err == nil {
		t.Fatal("sub-minimum class size accepted")
	}
	if _, err := New(Config{Classes: []ClassConfig{{Size: 32}, {Size: 32}}}); err == nil {
		t.Fatal("duplicate class size accepted")
	}
	if _, err := New(Config{Classes: []ClassConfig{{Size: 64}, {Size: 32}}}); err == nil {
		t.Fatal("descending class sizes accepted")
	}
	if _, err := New(Config{Mode: Static, Classes: []ClassConfig{{Size: 32}}}); err == nil {
		t.Fatal("static class without a block count accepted")
	}
}

func TestPowerOfTwoClasses(t *testing.T) {
	classes := PowerOfTwoClasses(16, 256, 8)
	want := []int{16, 32, 64, 128, 256}
	if len(classes) != len(want) {
		t.Fatalf("%v classes, want %v", len(classes), len(want))
	}
	for i, c := range classes {
		if c.Size != want[i] || c.Blocks != 8 {
			t.Fatalf("class %v: %+v", i, c)
		}
	}
}
