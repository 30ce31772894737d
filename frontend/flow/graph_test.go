package flow_test

import (
	"testing"

	"github.com/cottand/strux/frontend/ast"
	"github.com/cottand/strux/frontend/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelLifecycle(t *testing.T) {
	g := flow.NewGraph()
	start := g.NewStart(ast.NodeID(1))
	a := g.NewAssignment(start, ast.NodeID(2))
	lbl := g.NewBranchLabel()

	require.NoError(t, g.AddAntecedent(lbl, start))
	require.NoError(t, g.AddAntecedent(lbl, a))
	require.NoError(t, g.AddAntecedent(lbl, a), "duplicates are ignored")
	require.NoError(t, g.AddAntecedent(lbl, flow.Unreachable), "unreachable antecedents are dropped")

	ants, sealed := g.Antecedents(lbl)
	assert.False(t, sealed)
	assert.Equal(t, []flow.ID{start, a}, ants)

	g.Seal(lbl)
	ants, sealed = g.Antecedents(lbl)
	assert.True(t, sealed)
	assert.Equal(t, []flow.ID{start, a}, ants)
	assert.Error(t, g.AddAntecedent(lbl, start))
	assert.Error(t, g.AddAntecedent(a, start), "not a label")

	assert.True(t, g.Flags(start).IsShared())
	assert.True(t, g.Flags(a).IsReferenced())
}

func TestLoopBackEdge(t *testing.T) {
	g := flow.NewGraph()
	start := g.NewStart(ast.NodeID(1))
	loop := g.NewLoopLabel()
	require.NoError(t, g.AddAntecedent(loop, start))

	// a query during binding sees the entry edge only
	ants, sealed := g.Antecedents(loop)
	assert.False(t, sealed)
	assert.Equal(t, []flow.ID{start}, ants)

	cond := g.NewCondition(loop, ast.NodeID(3), true)
	body := g.NewAssignment(cond, ast.NodeID(4))
	require.NoError(t, g.AddAntecedent(loop, body))
	g.Seal(loop)

	ants, sealed = g.Antecedents(loop)
	assert.True(t, sealed)
	assert.Equal(t, []flow.ID{start, body}, ants)

	// the cycle through the loop label terminates
	visited := 0
	for range g.Walk(body) {
		visited++
	}
	assert.Equal(t, 4, visited)
	assert.Equal(t, []flow.ID{start}, g.StartsOf(body))
	assert.True(t, g.IsReachable(body))
	assert.Equal(t, start, g.StartOf(ast.NodeID(1)))
}

func TestUnreachableShortCircuits(t *testing.T) {
	g := flow.NewGraph()
	assert.True(t, g.IsUnreachable(flow.Unreachable))
	assert.Equal(t, flow.Unreachable, g.NewAssignment(flow.Unreachable, ast.NodeID(2)))
	assert.Equal(t, flow.Unreachable, g.NewCondition(flow.Unreachable, ast.NodeID(2), false))
	assert.Equal(t, flow.Unreachable, g.NewCall(flow.Unreachable, ast.NodeID(2)))
	assert.False(t, g.IsReachable(flow.Unreachable))
}

func TestReduceLabel(t *testing.T) {
	g := flow.NewGraph()
	start := g.NewStart(ast.NodeID(1))
	a := g.NewAssignment(start, ast.NodeID(2))
	b := g.NewAssignment(start, ast.NodeID(3))
	finally := g.NewBranchLabel()
	require.NoError(t, g.AddAntecedent(finally, a))
	require.NoError(t, g.AddAntecedent(finally, b))
	g.Seal(finally)

	reduce := g.NewReduceLabel(finally, []flow.ID{a}, finally)
	n := g.Get(reduce)
	require.NotNil(t, n)
	assert.True(t, n.Flags().IsReduceLabel())
	assert.Equal(t, finally, n.Target())
	assert.Equal(t, []flow.ID{a}, n.Reduced())
	assert.Equal(t, finally, n.Antecedent())
}

func TestSwitchClauseRange(t *testing.T) {
	g := flow.NewGraph()
	start := g.NewStart(ast.NodeID(1))
	clause := g.NewSwitchClause(start, ast.NodeID(5), 1, 3)
	from, to := g.Get(clause).ClauseRange()
	assert.Equal(t, 1, from)
	assert.Equal(t, 3, to)
	assert.Equal(t, ast.NodeID(5), g.Get(clause).Syntax())
}
