package service

import (
	"context"
	"fmt"
	"time"

	credentialDomain "github.com/allisson/credstore/internal/credential/domain"
)

type generationInput struct {
	ctx    context.Context
	params *credentialDomain.GenerationParameters
	actor  string
}

type generationOutput struct {
	value *credentialDomain.CredentialValue
	err   error
}

// universalGenerator dispatches a generation request to the generator of its kind.
type universalGenerator struct {
	generators credentialDomain.Mapping[generationInput, generationOutput]
}

// Generate produces a value for request. Failures wrap ErrGenerationFailed, except
// errors from resolving the signing CA which are returned unchanged.
func (u *universalGenerator) Generate(
	ctx context.Context,
	request *credentialDomain.GenerationRequest,
	actor string,
) (*credentialDomain.CredentialValue, error) {
	if request.Parameters == nil {
		return nil, fmt.Errorf("%w: generation parameters are required", credentialDomain.ErrGenerationFailed)
	}

	out, err := credentialDomain.Apply(request.Kind, u.generators, generationInput{
		ctx:    ctx,
		params: request.Parameters,
		actor:  actor,
	})
	if err != nil {
		return nil, err
	}
	return out.value, out.err
}

// wrapGeneration adapts a generator that cannot fail for reasons outside itself.
func wrapGeneration(
	generate func(*credentialDomain.GenerationParameters) (*credentialDomain.CredentialValue, error),
) credentialDomain.Handler[generationInput, generationOutput] {
	return func(_ credentialDomain.Kind, in generationInput) generationOutput {
		value, err := generate(in.params)
		if err != nil {
			return generationOutput{err: fmt.Errorf("%w: %v", credentialDomain.ErrGenerationFailed, err)}
		}
		return generationOutput{value: value}
	}
}

// NewCredentialGenerator creates the CredentialGenerator for every generatable kind.
func NewCredentialGenerator(caLoader CertificateAuthorityLoader) CredentialGenerator {
	certificates := &certificateGenerator{caLoader: caLoader, now: time.Now}

	return &universalGenerator{
		generators: credentialDomain.Mapping[generationInput, generationOutput]{
			Value: func(kind credentialDomain.Kind, _ generationInput) generationOutput {
				return generationOutput{
					err: fmt.Errorf("%w: %s credentials cannot be generated", credentialDomain.ErrGenerationFailed, kind),
				}
			},
			Password: wrapGeneration(func(p *credentialDomain.GenerationParameters) (*credentialDomain.CredentialValue, error) {
				password, err := generatePassword(p)
				if err != nil {
					return nil, err
				}
				return &credentialDomain.CredentialValue{Value: password}, nil
			}),
			Certificate: func(_ credentialDomain.Kind, in generationInput) generationOutput {
				value, err := certificates.generate(in.ctx, in.params, in.actor)
				return generationOutput{value: value, err: err}
			},
			SSH: wrapGeneration(generateSSHKeyPair),
			RSA: wrapGeneration(generateRSAKeyPair),
		},
	}
}
