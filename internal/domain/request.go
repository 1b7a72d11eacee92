package domain

import "errors"

// RunRequest is a validated policy+dataset pair. It cannot be modified once
// built; accessors hand out copies.
type RunRequest struct {
	policy  Candidate
	dataset Candidate
	valid   bool
}

// Valid reports whether r came out of a successful Build. The zero value is
// not valid.
func (r RunRequest) Valid() bool { return r.valid }

func (r RunRequest) Policy() Candidate  { return cloneCandidate(r.policy) }
func (r RunRequest) Dataset() Candidate { return cloneCandidate(r.dataset) }

// RunRequestBuilder holds the two input slots. Each Set call validates the
// candidate; an accepted candidate replaces the slot, a rejected one leaves
// the previous selection in place.
type RunRequestBuilder struct {
	policy  *Candidate
	dataset *Candidate
}

func NewRunRequestBuilder() *RunRequestBuilder {
	return &RunRequestBuilder{}
}

func (b *RunRequestBuilder) SetPolicy(c Candidate) error {
	if err := ValidateCandidate(c, KindPolicy); err != nil {
		return err
	}
	cc := cloneCandidate(c)
	b.policy = &cc
	return nil
}

func (b *RunRequestBuilder) SetDataset(c Candidate) error {
	if err := ValidateCandidate(c, KindDataset); err != nil {
		return err
	}
	cc := cloneCandidate(c)
	b.dataset = &cc
	return nil
}

// Set dispatches to SetPolicy or SetDataset.
func (b *RunRequestBuilder) Set(kind Kind, c Candidate) error {
	switch kind {
	case KindPolicy:
		return b.SetPolicy(c)
	case KindDataset:
		return b.SetDataset(c)
	}
	return ValidateCandidate(c, kind)
}

func (b *RunRequestBuilder) Policy() (Candidate, bool) {
	if b.policy == nil {
		return Candidate{}, false
	}
	return *b.policy, true
}

func (b *RunRequestBuilder) Dataset() (Candidate, bool) {
	if b.dataset == nil {
		return Candidate{}, false
	}
	return *b.dataset, true
}

var (
	ErrMissingPolicy  = errors.New("a policy PDF must be selected")
	ErrMissingDataset = errors.New("a CSV dataset must be selected")
)

// Build returns a RunRequest once both slots hold an accepted candidate.
func (b *RunRequestBuilder) Build() (RunRequest, error) {
	if b.policy == nil {
		return RunRequest{}, ErrMissingPolicy
	}
	if b.dataset == nil {
		return RunRequest{}, ErrMissingDataset
	}
	return RunRequest{
		policy:  cloneCandidate(*b.policy),
		dataset: cloneCandidate(*b.dataset),
		valid:   true,
	}, nil
}

// NewRunRequest validates both candidates and pairs them.
func NewRunRequest(policy, dataset Candidate) (RunRequest, error) {
	b := NewRunRequestBuilder()
	if err := b.SetPolicy(policy); err != nil {
		return RunRequest{}, err
	}
	if err := b.SetDataset(dataset); err != nil {
		return RunRequest{}, err
	}
	return b.Build()
}

func cloneCandidate(c Candidate) Candidate {
	if c.Payload != nil {
		c.Payload = append([]byte(nil), c.Payload...)
	}
	return c
}
