package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lukehollis/sync-physics/internal/concept"
	"github.com/lukehollis/sync-physics/internal/ir"
)

// inventoryRegistry registers a query returning stock rows for a given
// warehouse. Two warehouses, fixed contents.
func inventoryRegistry(t *testing.T) *concept.Registry {
	t.Helper()

	stock := map[string][]ir.IRObject{
		"east": {
			{"item": ir.IRString("bolt"), "qty": ir.IRInt(4)},
			{"item": ir.IRString("nut"), "qty": ir.IRInt(0)},
		},
		"west": {
			{"item": ir.IRString("bolt"), "qty": ir.IRInt(9)},
		},
	}

	reg := concept.NewRegistry()
	inv := concept.New("Inventory").
		Query("stock", func(_ context.Context, input ir.IRObject) ([]ir.IRObject, error) {
			wh, _ := input["warehouse"].(ir.IRString)
			return stock[string(wh)], nil
		})
	require.NoError(t, reg.Register(inv))
	return reg
}

func seedFrames(vars *Vars, wh Var, values ...string) []*Frame {
	frames := make([]*Frame, len(values))
	for i, v := range values {
		f := newFrame("flow-a")
		f.values[wh] = ir.IRString(v)
		frames[i] = f
	}
	return frames
}

func TestQueryStage_FlatMapsRows(t *testing.T) {
	reg := inventoryRegistry(t)
	vars := NewVars()
	wh := vars.New("warehouse")
	item := vars.New("item")
	qty := vars.New("qty")

	rule := &Rule{
		Name: "restock",
		Vars: vars,
		Where: []WhereStage{
			Query("Inventory.stock",
				Pattern{"warehouse": V(wh)},
				Pattern{"item": V(item), "qty": V(qty)},
			),
		},
	}

	out, err := applyWhere(context.Background(), reg, rule, seedFrames(vars, wh, "east", "west"))
	require.NoError(t, err)
	require.Len(t, out, 3, "each row extends its frame")

	got := make(map[string]int64)
	for _, f := range out {
		i, _ := f.Lookup(item)
		q, _ := f.Lookup(qty)
		w, _ := f.Lookup(wh)
		got[string(w.(ir.IRString))+"/"+string(i.(ir.IRString))] = int64(q.(ir.IRInt))
	}
	assert.Equal(t, map[string]int64{
		"east/bolt": 4,
		"east/nut":  0,
		"west/bolt": 9,
	}, got)
}

func TestQueryStage_BindOrAgreeDropsConflicts(t *testing.T) {
	reg := inventoryRegistry(t)
	vars := NewVars()
	wh := vars.New("warehouse")
	item := vars.New("item")

	rule := &Rule{
		Name: "bolt-only",
		Vars: vars,
		Where: []WhereStage{
			Query("Inventory.stock",
				Pattern{"warehouse": V(wh)},
				// item is pre-bound, so rows must agree with it.
				Pattern{"item": V(item)},
			),
		},
	}

	f := newFrame("flow-a")
	f.values[wh] = ir.IRString("east")
	f.values[item] = ir.IRString("bolt")

	out, err := applyWhere(context.Background(), reg, rule, []*Frame{f})
	require.NoError(t, err)
	assert.Len(t, out, 1, "only the agreeing row survives")
}

func TestQueryStage_ZeroRowsDropsFrame(t *testing.T) {
	reg := inventoryRegistry(t)
	vars := NewVars()
	wh := vars.New("warehouse")

	rule := &Rule{
		Name: "unknown-warehouse",
		Vars: vars,
		Where: []WhereStage{
			Query("Inventory.stock", Pattern{"warehouse": V(wh)}, Pattern{}),
		},
	}

	out, err := applyWhere(context.Background(), reg, rule, seedFrames(vars, wh, "north"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestQueryStage_UnboundInputVarIsRuleError(t *testing.T) {
	reg := inventoryRegistry(t)
	vars := NewVars()
	wh := vars.New("warehouse")

	rule := &Rule{
		Name: "broken",
		Vars: vars,
		Where: []WhereStage{
			Query("Inventory.stock", Pattern{"warehouse": V(wh)}, Pattern{}),
		},
	}

	_, err := applyWhere(context.Background(), reg, rule, []*Frame{newFrame("flow-a")})
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
	assert.Contains(t, err.Error(), "warehouse")
}

func TestQueryStage_UnknownQueryIsRuleError(t *testing.T) {
	reg := inventoryRegistry(t)
	vars := NewVars()

	rule := &Rule{
		Name: "missing-query",
		Vars: vars,
		Where: []WhereStage{
			Query("Inventory.missing", Pattern{}, Pattern{}),
		},
	}

	_, err := applyWhere(context.Background(), reg, rule, []*Frame{newFrame("flow-a")})
	require.Error(t, err)
	assert.True(t, IsRuleError(err))
}

func TestFilterAndMapStages(t *testing.T) {
	vars := NewVars()
	n := vars.New("n")

	frames := make([]*Frame, 4)
	for i := range frames {
		f := newFrame("flow-a")
		f.values[n] = ir.IRInt(int64(i))
		frames[i] = f
	}

	rule := &Rule{
		Name: "evens-doubled",
		Vars: vars,
		Where: []WhereStage{
			Filter(func(f *Frame) bool {
				v, _ := f.Lookup(n)
				return int64(v.(ir.IRInt))%2 == 0
			}),
			Map(func(f *Frame) *Frame {
				v, _ := f.Lookup(n)
				if int64(v.(ir.IRInt)) == 0 {
					return nil // drop
				}
				return f.With(n, ir.IRInt(int64(v.(ir.IRInt))*2))
			}),
		},
	}

	out, err := applyWhere(context.Background(), nil, rule, frames)
	require.NoError(t, err)
	require.Len(t, out, 1)

	v, _ := out[0].Lookup(n)
	assert.True(t, ir.Equal(ir.IRInt(4), v))
}

func TestApplyWhere_EmptyInputShortCircuits(t *testing.T) {
	rule := &Rule{
		Name: "never-called",
		Vars: NewVars(),
		Where: []WhereStage{
			Map(func(f *Frame) *Frame {
				panic("stage must not run on an empty frame set")
			}),
		},
	}

	out, err := applyWhere(context.Background(), nil, rule, nil)
	require.NoError(t, err)
	assert.Empty(t, out)
}
