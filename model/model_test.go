package model_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"bdi.dev/engine/model"
)

func TestAuthoringBuildsTemplate(t *testing.T) {
	reg := model.NewRegistry()

	_, err := reg.NewGoal("Greet").Commit()
	require.NoError(t, err)

	_, err = reg.NewAction("SayHello", func(ac model.ActionContext) model.ActionStatus {
		return model.ActionSuccess
	}).Commit()
	require.NoError(t, err)

	_, err = reg.NewPlan("GreetPlan").
		Handles("Greet").
		Body(model.Action("SayHello")).
		Commit()
	require.NoError(t, err)

	_, err = reg.NewTactic("GreetTactic").Goal("Greet").Plans("GreetPlan").Commit()
	require.NoError(t, err)

	tmpl, err := reg.NewTemplate("Greeter").
		Plans("GreetPlan").
		HandleAction("SayHello").
		Tactic("GreetTactic").
		Commit()
	require.NoError(t, err)

	reg.Commit()

	require.Len(t, tmpl.PlansFor("Greet"), 1)
	require.NotNil(t, tmpl.TacticFor("Greet"))
}

func TestDuplicateGoalRejected(t *testing.T) {
	reg := model.NewRegistry()
	_, err := reg.NewGoal("G").Commit()
	require.NoError(t, err)
	_, err = reg.NewGoal("G").Commit()
	require.Error(t, err)
}

func TestCommitFreezesRegistry(t *testing.T) {
	reg := model.NewRegistry()
	reg.Commit()
	_, err := reg.NewGoal("G").Commit()
	require.Error(t, err)
}

func TestTemplateUnknownPlanRejected(t *testing.T) {
	reg := model.NewRegistry()
	_, err := reg.NewTemplate("T").Plans("NoSuchPlan").Commit()
	require.Error(t, err)
}

func TestResourceMinMaxValidation(t *testing.T) {
	reg := model.NewRegistry()
	_, err := reg.NewResource("fuel").Min(10).Max(5).Commit()
	require.Error(t, err)

	_, err = reg.NewResource("fuel").Min(0).Max(10).Commit()
	require.NoError(t, err)
}
