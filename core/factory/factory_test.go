package factory

import "testing"

type sample struct{ A int }

type sampleConf struct {
	A int `json:"a"`
}

func sampleFactory(conf map[string]any) (*sample, error) {
	var c sampleConf
	if err := Decode(conf, &c); err != nil {
		return nil, err
	}
	return &sample{A: c.A}, nil
}

// Test registry registration and instantiation using Decode.
func TestRegistry_Create(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("s", sampleFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	inst, err := reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": 3}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if inst.A != 3 {
		t.Fatalf("expected 3 got %d", inst.A)
	}
	// environment overrides arrive as strings
	inst, err = reg.Create(ModuleConfig{Type: "s", Conf: map[string]any{"a": "4"}})
	if err != nil {
		t.Fatalf("create from string: %v", err)
	}
	if inst.A != 4 {
		t.Fatalf("expected 4 got %d", inst.A)
	}
}

// Test duplicate registration, unknown type and unknown key errors.
func TestRegistry_Errors(t *testing.T) {
	reg := NewRegistry[*sample]()
	if err := reg.Register("x", sampleFactory); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register("x", sampleFactory); err == nil {
		t.Fatal("expected duplicate error")
	}
	if err := reg.Register("nil", nil); err == nil {
		t.Fatal("expected nil factory error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "y"}); err == nil {
		t.Fatal("expected unknown type error")
	}
	if _, err := reg.Create(ModuleConfig{Type: "x", Conf: map[string]any{"b": 1}}); err == nil {
		t.Fatal("expected unknown key error")
	}
}

func TestRegistry_CreateAllAndNames(t *testing.T) {
	reg := NewRegistry[*sample]()
	for _, n := range []string{"b", "a"} {
		if err := reg.Register(n, sampleFactory); err != nil {
			t.Fatalf("register: %v", err)
		}
	}
	names := reg.Names()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Fatalf("unexpected names %v", names)
	}
	all, err := reg.CreateAll([]ModuleConfig{{Type: "a", Conf: map[string]any{"a": 1}}, {Type: "b"}})
	if err != nil {
		t.Fatalf("create all: %v", err)
	}
	if len(all) != 2 || all[0].A != 1 || all[1].A != 0 {
		t.Fatalf("unexpected modules %+v", all)
	}
}
