package compiler

import (
	"errors"
	"strings"
	"testing"

	"github.com/stepflow/codestep/vm"
)

// compileAndRun compiles a source unit and invokes its entry point.
func compileAndRun(t *testing.T, source string, params map[string]any) map[string]any {
	t.Helper()
	artifact, err := Compile(source)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	entry, err := vm.Load(artifact)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	result, err := entry.Invoke(params)
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	return result
}

func TestCompileMinimalProgram(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				return {"ok": true};
			}
		}
	`, nil)

	if result["ok"] != true {
		t.Errorf("result = %v", result)
	}
}

func TestCompileBlankSource(t *testing.T) {
	for _, source := range []string{"", "   ", "\n\t  \n"} {
		if _, err := Compile(source); !errors.Is(err, ErrBlankSource) {
			t.Errorf("Compile(%q) = %v, want ErrBlankSource", source, err)
		}
	}
}

func TestCompileArtifactShape(t *testing.T) {
	artifact, err := Compile(`
		class Main {
			static ResultMap main(ParameterMap p) {
				x = 1;
				y = 2;
				return {};
			}
		}
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	if artifact.Version != vm.ArtifactVersion {
		t.Errorf("version = %d", artifact.Version)
	}
	if artifact.TypeName != "Main" {
		t.Errorf("type name = %q", artifact.TypeName)
	}
	m := artifact.Method("main")
	if m == nil {
		t.Fatal("no main method")
	}
	if !m.Static || m.ReturnType != "ResultMap" {
		t.Errorf("main: static=%v returns %q", m.Static, m.ReturnType)
	}
	if m.Chunk.LocalCount != 2 {
		t.Errorf("local count = %d, want 2", m.Chunk.LocalCount)
	}
	if len(m.Chunk.ParamNames) != 1 || m.Chunk.ParamNames[0] != "p" {
		t.Errorf("param names = %v", m.Chunk.ParamNames)
	}
}

func TestCompileArithmetic(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				r = {};
				r["intAdd"] = 2 + 3;
				r["intDiv"] = 7 / 2;
				r["mod"] = 7 % 3;
				r["mixed"] = 1 + 2.5;
				r["neg"] = -5;
				r["concat"] = "n=" + 42;
				return r;
			}
		}
	`, nil)

	checks := map[string]any{
		"intAdd": int64(5),
		"intDiv": int64(3),
		"mod":    int64(1),
		"mixed":  float64(3.5),
		"neg":    int64(-5),
		"concat": "n=42",
	}
	for k, want := range checks {
		if got := result[k]; got != want {
			t.Errorf("%s = %v (%T), want %v (%T)", k, got, got, want, want)
		}
	}
}

func TestCompileParamsAndControlFlow(t *testing.T) {
	source := `
		class Main {
			static ResultMap main(ParameterMap p) {
				r = {};
				if (p["n"] > 10) {
					r["bucket"] = "big";
				} else if (p["n"] > 0) {
					r["bucket"] = "small";
				} else {
					r["bucket"] = "none";
				}
				return r;
			}
		}
	`

	tests := []struct {
		n    any
		want string
	}{
		{int64(42), "big"},
		{float64(3), "small"},
		{int64(0), "none"},
	}
	for _, tt := range tests {
		result := compileAndRun(t, source, map[string]any{"n": tt.n})
		if result["bucket"] != tt.want {
			t.Errorf("n=%v: bucket = %v, want %q", tt.n, result["bucket"], tt.want)
		}
	}
}

func TestCompileWhileLoop(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				sum = 0;
				i = 1;
				while (i <= 10) {
					sum = sum + i;
					i = i + 1;
				}
				return {"sum": sum};
			}
		}
	`, nil)

	if result["sum"] != int64(55) {
		t.Errorf("sum = %v, want 55", result["sum"])
	}
}

func TestCompileBuiltins(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				xs = [1, 2];
				xs = append(xs, 3);
				r = {};
				r["count"] = len(xs);
				r["last"] = xs[2];
				r["text"] = str(3.5);
				r["hasName"] = has(p, "name");
				r["hasOther"] = has(p, "other");
				r["keys"] = keys({"b": 1, "a": 2});
				return r;
			}
		}
	`, map[string]any{"name": "x"})

	if result["count"] != int64(3) || result["last"] != int64(3) {
		t.Errorf("list results: count=%v last=%v", result["count"], result["last"])
	}
	if result["text"] != "3.5" {
		t.Errorf("text = %v", result["text"])
	}
	if result["hasName"] != true || result["hasOther"] != false {
		t.Errorf("has results: %v, %v", result["hasName"], result["hasOther"])
	}
	if !vm.ValuesEqual(result["keys"], []any{"a", "b"}) {
		t.Errorf("keys = %v, want sorted [a b]", result["keys"])
	}
}

func TestCompileShortCircuitGuards(t *testing.T) {
	// The standard guard idiom must not evaluate the right operand when
	// the left already decides the result.
	source := `
		class Main {
			static ResultMap main(ParameterMap p) {
				r = {};
				if (has(p, "x") && p["x"] > 1) {
					r["guard"] = "big";
				} else {
					r["guard"] = "absent or small";
				}
				r["orGuard"] = !has(p, "x") || p["x"] > 1;
				return r;
			}
		}
	`

	// Absent key: && must short-circuit before comparing null with int
	result := compileAndRun(t, source, map[string]any{})
	if result["guard"] != "absent or small" {
		t.Errorf("guard = %v, want else branch", result["guard"])
	}
	if vm.Truthy(result["orGuard"]) != true {
		t.Errorf("orGuard = %v, want truthy", result["orGuard"])
	}

	result = compileAndRun(t, source, map[string]any{"x": int64(5)})
	if result["guard"] != "big" {
		t.Errorf("guard = %v, want then branch", result["guard"])
	}
}

func TestCompileShortCircuitSkipsEffects(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				r = {};
				r["and"] = false && error("must not run");
				r["or"] = true || error("must not run");
				return r;
			}
		}
	`, nil)

	if vm.Truthy(result["and"]) {
		t.Errorf("and = %v, want falsy", result["and"])
	}
	if !vm.Truthy(result["or"]) {
		t.Errorf("or = %v, want truthy", result["or"])
	}
}

func TestCompileMissingMapKeyIsNull(t *testing.T) {
	result := compileAndRun(t, `
		class Main {
			static ResultMap main(ParameterMap p) {
				return {"missing": p["nope"] == null};
			}
		}
	`, map[string]any{})

	if result["missing"] != true {
		t.Errorf("missing = %v", result["missing"])
	}
}

func TestCompileImplicitReturn(t *testing.T) {
	artifact, err := Compile(`
		class Main {
			static ResultMap main(ParameterMap p) {
				x = 1;
			}
		}
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	code := artifact.Method("main").Chunk.Code
	if last := vm.Opcode(code[len(code)-1]); last != vm.OpReturnNull {
		t.Errorf("last opcode = %v, want OpReturnNull", last)
	}
}

func TestCompileErrorBuiltinRaises(t *testing.T) {
	artifact, err := Compile(`
		class Main {
			static ResultMap main(ParameterMap p) {
				error("boom");
				return {};
			}
		}
	`)
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}
	entry, err := vm.Load(artifact)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	_, err = entry.Invoke(nil)
	var rerr *vm.RuntimeError
	if !errors.As(err, &rerr) {
		t.Fatalf("Invoke error = %v, want *vm.RuntimeError", err)
	}
	if rerr.Msg != "boom" {
		t.Errorf("message = %q", rerr.Msg)
	}
}

func TestCompileRejections(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			"wrong class name",
			`class Other { static ResultMap main(ParameterMap p) { return {}; } }`,
			`defines class "Other"`,
		},
		{
			"no main method",
			`class Main { static ResultMap helper(ParameterMap p) { return {}; } }`,
			"does not define main",
		},
		{
			"undefined variable",
			`class Main { static ResultMap main(ParameterMap p) { return {"x": y}; } }`,
			`undefined variable "y"`,
		},
		{
			"assign to parameter",
			`class Main { static ResultMap main(ParameterMap p) { p = {}; return p; } }`,
			`cannot assign to parameter "p"`,
		},
		{
			"unknown function",
			`class Main { static ResultMap main(ParameterMap p) { x = frob(p); return {}; } }`,
			`unknown function "frob"`,
		},
		{
			"wrong arity",
			`class Main { static ResultMap main(ParameterMap p) { x = len(p, p); return {}; } }`,
			"len takes 1 argument(s), got 2",
		},
		{
			"syntax error",
			`class Main { static ResultMap main(ParameterMap p) { x = ; } }`,
			"parse error",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.source)
			if err == nil {
				t.Fatal("Compile succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}
