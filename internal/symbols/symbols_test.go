package symbols_test

import (
	"testing"

	"github.com/tsnjs/tsnjs/internal/jsparse"
	"github.com/tsnjs/tsnjs/internal/posmap"
	"github.com/tsnjs/tsnjs/internal/symbols"
	"github.com/tsnjs/tsnjs/internal/testhelp"
)

func collect(t *testing.T, src string) symbols.Inventory {
	t.Helper()
	source := []byte(testhelp.Dedent(src))
	root, err := jsparse.Parse("test.js", source, jsparse.Options{})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	mapper := posmap.New(source)
	return symbols.Collect(root, source, mapper)
}

func TestTopLevelExportedFunction(t *testing.T) {
	inv := collect(t, `
		export function alpha() { return 'alpha'; }
	`)
	if len(inv.Functions) != 1 {
		t.Fatalf("got %d function entries, want 1", len(inv.Functions))
	}
	fn := inv.Functions[0]
	if fn.CanonicalName != "exports.alpha" {
		t.Errorf("canonical name = %q, want exports.alpha", fn.CanonicalName)
	}
	if fn.ExportKind != symbols.ExportNamed {
		t.Errorf("export kind = %q, want named", fn.ExportKind)
	}
	if fn.Hash == "" {
		t.Error("expected non-empty hash")
	}
}

func TestUnexportedFunctionIsBare(t *testing.T) {
	inv := collect(t, `function helper() {}`)
	if inv.Functions[0].CanonicalName != "helper" {
		t.Errorf("canonical name = %q, want helper", inv.Functions[0].CanonicalName)
	}
	if inv.Functions[0].Exported {
		t.Error("expected Exported=false")
	}
}

func TestCommonJSModuleExportsFunction(t *testing.T) {
	inv := collect(t, `module.exports = function run() {};`)
	if len(inv.Functions) != 1 {
		t.Fatalf("got %d function entries, want 1", len(inv.Functions))
	}
	if inv.Functions[0].CanonicalName != "module.exports" {
		t.Errorf("canonical name = %q, want module.exports", inv.Functions[0].CanonicalName)
	}
	if inv.Functions[0].ExportKind != symbols.ExportCommonJSDefault {
		t.Errorf("export kind = %q, want commonjs-default", inv.Functions[0].ExportKind)
	}
}

func TestClassMethodCanonicalName(t *testing.T) {
	inv := collect(t, `
		class Timer {
			static create() {}
			get value() { return 1; }
		}
	`)
	var names []string
	for _, fn := range inv.Functions {
		names = append(names, fn.CanonicalName)
	}
	want := map[string]bool{"Timer": true, "Timer > static > create": true, "Timer > get > value": true}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected canonical name %q", n)
		}
	}
	if len(names) != 3 {
		t.Errorf("got %d entries, want 3: %v", len(names), names)
	}
}

func TestImplicitConstructorSynthesised(t *testing.T) {
	inv := collect(t, `class Plain {}`)
	if len(inv.Constructors) != 1 {
		t.Fatalf("got %d constructor entries, want 1", len(inv.Constructors))
	}
	if inv.Constructors[0].Kind != "implicit" {
		t.Errorf("kind = %q, want implicit", inv.Constructors[0].Kind)
	}
	if inv.Constructors[0].Hash != "" {
		t.Error("implicit constructor should have empty hash")
	}
}

func TestVariableDeclaratorAndBindingModes(t *testing.T) {
	inv := collect(t, `const x = 1;`)
	var modes []symbols.TargetMode
	for _, v := range inv.Variables {
		modes = append(modes, v.TargetMode)
	}
	want := []symbols.TargetMode{symbols.TargetDeclaration, symbols.TargetDeclarator, symbols.TargetBinding}
	if len(modes) != len(want) {
		t.Fatalf("got %d variable entries, want %d: %v", len(modes), len(want), modes)
	}
	for i, m := range want {
		if modes[i] != m {
			t.Errorf("mode[%d] = %q, want %q", i, modes[i], m)
		}
	}
}

func TestHostCallCallbackNaming(t *testing.T) {
	inv := collect(t, `
		describe('mission_timers', () => {
			test('x', function callbackFn() {});
		});
	`)
	var found bool
	for _, fn := range inv.Functions {
		if fn.CanonicalName == "call:describe:mission_timers > callback > call:test:x > callback > callbackFn" {
			found = true
		}
	}
	if !found {
		var names []string
		for _, fn := range inv.Functions {
			names = append(names, fn.CanonicalName)
		}
		t.Fatalf("expected nested host-call callback name, got %v", names)
	}
}

func TestHashStableAcrossRuns(t *testing.T) {
	src := `export function alpha() { return 'alpha'; }`
	inv1 := collect(t, src)
	inv2 := collect(t, src)
	if inv1.Functions[0].Hash != inv2.Functions[0].Hash {
		t.Errorf("hash not stable: %s vs %s", inv1.Functions[0].Hash, inv2.Functions[0].Hash)
	}
}
