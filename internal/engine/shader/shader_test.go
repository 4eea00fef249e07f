package shader

import (
	"errors"
	"strings"
	"testing"
)

func TestResolveDropsInactive(t *testing.T) {
	locs := map[string]int32{"u_a": 0, "u_b": -1, "u_c": 3}
	got := resolve([]string{"u_a", "u_b", "u_c", "u_missing"}, func(n string) int32 {
		if v, ok := locs[n]; ok {
			return v
		}
		return -1
	})

	if len(got) != 2 || got["u_a"] != 0 || got["u_c"] != 3 {
		t.Errorf("resolve() = %v", got)
	}
}

func TestProgramLookups(t *testing.T) {
	p := NewDetached("test",
		map[string]int32{UniformTransform: 2},
		map[string]int32{AttributePosition: 0})

	loc, err := p.Uniform(UniformTransform)
	if err != nil || loc != 2 {
		t.Errorf("Uniform() = %d, %v", loc, err)
	}

	if _, err := p.Uniform("u_missing"); !errors.Is(err, ErrUniformNotFound) {
		t.Errorf("expected ErrUniformNotFound, got %v", err)
	}

	attr, err := p.Attribute(AttributePosition)
	if err != nil || attr != 0 {
		t.Errorf("Attribute() = %d, %v", attr, err)
	}

	_, err = p.Attribute(AttributeColor)
	if !errors.Is(err, ErrAttributeNotFound) {
		t.Errorf("expected ErrAttributeNotFound, got %v", err)
	}
	if !strings.Contains(err.Error(), "test") {
		t.Errorf("error should name the program: %v", err)
	}
}

func TestBundledSources(t *testing.T) {
	for _, name := range []string{UniformTransform, AttributePosition, AttributeColor} {
		if !strings.Contains(VertexColorVert, name) {
			t.Errorf("vertex shader does not declare %s", name)
		}
	}
	if !strings.HasPrefix(VertexColorFrag, "#version 410 core") {
		t.Error("fragment shader should target GLSL 410 core")
	}
}

func TestInfoLogEmpty(t *testing.T) {
	called := false
	if got := infoLog(0, func(*uint8) { called = true }); got != "(no log)" {
		t.Errorf("infoLog(0) = %q", got)
	}
	if called {
		t.Error("reader should not be called for an empty log")
	}
}
