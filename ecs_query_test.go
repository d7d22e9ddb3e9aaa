package gizmo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testVelocity struct {
	dx float32
}

func TestQuery_MapVisitsMatchingEntitiesInOrder(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	a := cmd.AddEntity(&testPosition{x: 1}, &testVelocity{dx: 1})
	b := cmd.AddEntity(&testPosition{x: 2})
	c := cmd.AddEntity(&testPosition{x: 3}, &testVelocity{dx: 3})
	app.FlushCommands()

	var seen []EntityId
	MakeQuery2[testPosition, testVelocity](cmd).Map(func(eid EntityId, p *testPosition, v *testVelocity) bool {
		seen = append(seen, eid)
		p.x += v.dx
		return true
	})

	assert.Equal(t, []EntityId{a, c}, seen)
	assert.Equal(t, float32(2), GetComponent[testPosition](cmd, a).x)
	assert.Equal(t, float32(2), GetComponent[testPosition](cmd, b).x)
}

func TestQuery_Optionals(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	cmd.AddEntity(&testPosition{x: 1}, &testVelocity{dx: 1})
	cmd.AddEntity(&testPosition{x: 2})
	app.FlushCommands()

	withVel, withoutVel := 0, 0
	MakeQuery2[testPosition, testVelocity](cmd).Map(func(eid EntityId, p *testPosition, v *testVelocity) bool {
		if v == nil {
			withoutVel++
		} else {
			withVel++
		}
		return true
	}, testVelocity{})

	assert.Equal(t, 1, withVel)
	assert.Equal(t, 1, withoutVel)
}

func TestQuery_WithoutTypes(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	cmd.AddEntity(&testPosition{x: 1}, &testTag{})
	keep := cmd.AddEntity(&testPosition{x: 2})
	app.FlushCommands()

	var seen []EntityId
	MakeQuery1[testPosition](cmd).WithoutTypes(testTag{}).Map(func(eid EntityId, p *testPosition) bool {
		seen = append(seen, eid)
		return true
	})

	assert.Equal(t, []EntityId{keep}, seen)
}

func TestQuery_StopsWhenCallbackReturnsFalse(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	for i := 0; i < 5; i++ {
		cmd.AddEntity(&testPosition{})
	}
	app.FlushCommands()

	visits := 0
	MakeQuery1[testPosition](cmd).Map(func(eid EntityId, p *testPosition) bool {
		visits++
		return false
	})
	assert.Equal(t, 1, visits)
}

func TestQuery3(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	e := cmd.AddEntity(&testPosition{}, &testVelocity{}, &testTag{})
	cmd.AddEntity(&testPosition{}, &testVelocity{})
	app.FlushCommands()

	var seen []EntityId
	MakeQuery3[testPosition, testVelocity, testTag](cmd).Map(func(eid EntityId, _ *testPosition, _ *testVelocity, _ *testTag) bool {
		seen = append(seen, eid)
		return true
	})
	assert.Equal(t, []EntityId{e}, seen)
}

func TestQuery_MergesArchetypesInIdOrder(t *testing.T) {
	app := NewApp()
	cmd := app.Commands()
	a := cmd.AddEntity(&testPosition{})
	b := cmd.AddEntity(&testPosition{}, &testTag{})
	c := cmd.AddEntity(&testPosition{}, &testVelocity{})
	d := cmd.AddEntity(&testPosition{})
	app.FlushCommands()

	// a moves to the archetype of b but keeps its place in the order.
	cmd.AddComponents(a, &testTag{})
	app.FlushCommands()

	var seen []EntityId
	MakeQuery1[testPosition](cmd).Map(func(eid EntityId, _ *testPosition) bool {
		seen = append(seen, eid)
		return true
	})
	assert.Equal(t, []EntityId{a, b, c, d}, seen)

	seen = nil
	MakeQuery2[testPosition, testTag](cmd).Map(func(eid EntityId, _ *testPosition, tag *testTag) bool {
		seen = append(seen, eid)
		return true
	}, testTag{})
	assert.Equal(t, []EntityId{a, b, c, d}, seen, "optional components widen the match")
}
