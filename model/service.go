package model

// ServiceBuilder authors a service template: an AgentTemplate restricted
// to handling actions on behalf of other agents that attach it. It
// declares no goals, plans, or tactics of its own.
type ServiceBuilder struct {
	inner *TemplateBuilder
}

// NewService starts authoring a service template.
func (r *Registry) NewService(name string) *ServiceBuilder {
	return &ServiceBuilder{inner: r.NewTemplate(name)}
}

// HandleAction attaches a committed action (by name) this service runs
// on behalf of any agent that attaches it.
func (b *ServiceBuilder) HandleAction(name string) *ServiceBuilder {
	b.inner.HandleAction(name)
	return b
}

// Commit freezes the service template.
func (b *ServiceBuilder) Commit() (*AgentTemplate, error) {
	return b.inner.Commit()
}
