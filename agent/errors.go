package agent

import "bdi.dev/engine/bdierrors"

func errTacticNotFound(name string) error {
	return bdierrors.Newf(bdierrors.KindValidation, "agent: unknown tactic %q", name)
}

func errUnknownGoal(name string) error {
	return bdierrors.Newf(bdierrors.KindValidation, "agent: unknown goal %q", name)
}

func errSchemaMismatch(goal, want, got string) error {
	return bdierrors.Newf(bdierrors.KindValidation, "agent: goal %q wants parameters schema %q, got %q", goal, want, got)
}

func errMissingParameters(goal string) error {
	return bdierrors.Newf(bdierrors.KindValidation, "agent: goal %q requires a parameters message", goal)
}

func errUnexpectedParameters(goal string) error {
	return bdierrors.Newf(bdierrors.KindValidation, "agent: goal %q takes no parameters but one was supplied", goal)
}
