package summary

import (
	"testing"

	"github.com/arkbridge/native-body-rebuilder/internal/ir"
)

func newTestFunctionWithCallbackInfo() *Function {
	fn := newFunction("napi_exported")

	v0, _ := fn.interned.intern("%0")
	v1, _ := fn.interned.intern("%1")
	v2, _ := fn.interned.intern("%2")

	call := &Call{
		Target:   getCallbackInfoTarget,
		CallSite: "cs0",
		Rets: []*ReturnGroup{
			{Tag: "3", Vars: []*Variable{v0.(*Variable), v1.(*Variable)}},
			{Tag: "-1", Vars: []*Variable{v2.(*Variable)}},
		},
	}
	fn.Instructions = append(fn.Instructions, call)

	return fn
}

func TestRealArgsExtractsTagThreeOnly(t *testing.T) {
	fn := newTestFunctionWithCallbackInfo()

	args := fn.RealArgs()
	if len(args) != 2 {
		t.Fatalf("RealArgs() returned %d vars, want 2", len(args))
	}
	if args[0].Token() != "%0" || args[1].Token() != "%1" {
		t.Fatalf("RealArgs() = %v, want [%%0 %%1]", args)
	}
}

func TestCloneProducesIndependentInstances(t *testing.T) {
	fn := newTestFunctionWithCallbackInfo()
	clone := fn.Clone()

	origCall := fn.Instructions[0].(*Call)
	cloneCall := clone.Instructions[0].(*Call)

	if origCall == cloneCall {
		t.Fatalf("Clone did not copy the Call instruction")
	}

	origVar := origCall.Rets[0].Vars[0]
	cloneVar := cloneCall.Rets[0].Vars[0]

	if origVar == cloneVar {
		t.Fatalf("Clone did not copy the return Variable")
	}
	if origVar.Token() != cloneVar.Token() {
		t.Fatalf("clone var token = %q, want %q", cloneVar.Token(), origVar.Token())
	}

	cloneVar.Type = ir.TypeNumber
	if origVar.Type.Kind == ir.Number {
		t.Fatalf("mutating the clone's variable type must not affect the original")
	}

	cloneArgs := clone.RealArgs()
	if len(cloneArgs) != 2 {
		t.Fatalf("clone RealArgs() returned %d vars, want 2", len(cloneArgs))
	}
	if cloneArgs[0] == fn.RealArgs()[0] {
		t.Fatalf("clone RealArgs should reference the clone's own variables")
	}
}
