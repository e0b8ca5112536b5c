package domain

import (
	"errors"
	"fmt"
	"regexp"

	validation "github.com/jellydator/validation"

	permissionDomain "github.com/allisson/credstore/internal/permission/domain"
	customValidation "github.com/allisson/credstore/internal/validation"
)

// Defaults applied when generation parameters leave a field unset.
const (
	DefaultPasswordLength      = 30
	DefaultKeyLength           = 2048
	DefaultCertificateDuration = 365
)

// GenerationParameters describes how a value was generated so it can be regenerated
// with the same shape. Fields are interpreted per kind.
type GenerationParameters struct {
	// Password
	Length         int  `json:"length,omitempty"`
	ExcludeUpper   bool `json:"exclude_upper,omitempty"`
	ExcludeLower   bool `json:"exclude_lower,omitempty"`
	ExcludeNumber  bool `json:"exclude_number,omitempty"`
	IncludeSpecial bool `json:"include_special,omitempty"`

	// Certificate, SSH and RSA
	KeyLength int `json:"key_length,omitempty"`

	// SSH
	SSHComment string `json:"ssh_comment,omitempty"`

	// Certificate
	CommonName       string   `json:"common_name,omitempty"`
	Organization     string   `json:"organization,omitempty"`
	OrganizationUnit string   `json:"organization_unit,omitempty"`
	Locality         string   `json:"locality,omitempty"`
	State            string   `json:"state,omitempty"`
	Country          string   `json:"country,omitempty"`
	AlternativeNames []string `json:"alternative_names,omitempty"`
	Duration         int      `json:"duration,omitempty"`
	CA               string   `json:"ca,omitempty"`
	IsCA             bool     `json:"is_ca,omitempty"`
	SelfSign         bool     `json:"self_sign,omitempty"`
}

// GenerationRequest asks the generator for a new value. It is never persisted.
type GenerationRequest struct {
	Name                  string
	Kind                  Kind
	Parameters            *GenerationParameters
	Overwrite             bool
	AdditionalPermissions []*permissionDomain.AccessControlEntry
}

// sshCommentRegex keeps the comment a single token of the public key line.
var sshCommentRegex = regexp.MustCompile(`^\S*$`)

var errNotGeneratable = errors.New("value credentials cannot be generated")

var parameterValidation = Mapping[*GenerationParameters, error]{
	Value: func(Kind, *GenerationParameters) error {
		return errNotGeneratable
	},
	Password: func(_ Kind, p *GenerationParameters) error {
		if err := validation.ValidateStruct(p,
			validation.Field(&p.Length, validation.Min(4), validation.Max(200)),
		); err != nil {
			return err
		}
		if p.ExcludeUpper && p.ExcludeLower && p.ExcludeNumber && !p.IncludeSpecial {
			return errors.New("at least one character class must be included")
		}
		return nil
	},
	Certificate: func(_ Kind, p *GenerationParameters) error {
		if err := validation.ValidateStruct(p,
			validation.Field(&p.KeyLength, customValidation.KeyLength),
			validation.Field(&p.Duration, validation.Min(1), validation.Max(3650)),
			validation.Field(&p.CommonName, validation.Length(0, 64)),
			validation.Field(&p.Country, validation.Length(0, 2)),
			validation.Field(&p.CA, validation.When(p.CA != "", customValidation.CredentialName)),
		); err != nil {
			return err
		}
		if p.CommonName == "" && len(p.AlternativeNames) == 0 {
			return errors.New("common_name or alternative_names is required")
		}
		if p.CA == "" && !p.SelfSign && !p.IsCA {
			return errors.New("one of ca, self_sign or is_ca is required")
		}
		if p.CA != "" && p.SelfSign {
			return errors.New("ca and self_sign are mutually exclusive")
		}
		return nil
	},
	SSH: func(_ Kind, p *GenerationParameters) error {
		return validation.ValidateStruct(p,
			validation.Field(&p.KeyLength, customValidation.KeyLength),
			validation.Field(&p.SSHComment, validation.Match(sshCommentRegex), validation.Length(0, 255)),
		)
	},
	RSA: func(_ Kind, p *GenerationParameters) error {
		return validation.ValidateStruct(p,
			validation.Field(&p.KeyLength, customValidation.KeyLength),
		)
	},
}

var parameterDefaults = Mapping[*GenerationParameters, *GenerationParameters]{
	Value: func(_ Kind, p *GenerationParameters) *GenerationParameters { return p },
	Password: func(_ Kind, p *GenerationParameters) *GenerationParameters {
		if p.Length == 0 {
			p.Length = DefaultPasswordLength
		}
		return p
	},
	Certificate: func(kind Kind, p *GenerationParameters) *GenerationParameters {
		if p.KeyLength == 0 {
			p.KeyLength = DefaultKeyLength
		}
		if kind == CertificateKind && p.Duration == 0 {
			p.Duration = DefaultCertificateDuration
		}
		return p
	},
}

// regenerationParameters yields a fresh copy of stored parameters, or the parameters to
// use when none were stored. Nil means the kind cannot be regenerated without them.
var regenerationParameters = Mapping[*GenerationParameters, *GenerationParameters]{
	Value: func(Kind, *GenerationParameters) *GenerationParameters { return nil },
	Password: func(_ Kind, p *GenerationParameters) *GenerationParameters {
		if p == nil {
			return &GenerationParameters{}
		}
		return p.clone()
	},
	Certificate: func(_ Kind, p *GenerationParameters) *GenerationParameters {
		if p == nil {
			return nil
		}
		return p.clone()
	},
	SSH: func(_ Kind, p *GenerationParameters) *GenerationParameters {
		if p == nil {
			return &GenerationParameters{}
		}
		return p.clone()
	},
	RSA: func(_ Kind, p *GenerationParameters) *GenerationParameters {
		if p == nil {
			return &GenerationParameters{}
		}
		return p.clone()
	},
}

// normalizeParameters applies defaults, then validates.
var normalizeParameters = Compose(parameterValidation, parameterDefaults)

func (p *GenerationParameters) clone() *GenerationParameters {
	c := *p
	c.AlternativeNames = append([]string(nil), p.AlternativeNames...)
	return &c
}

// Normalize applies kind defaults to the parameters in place and validates them.
// Validation failures wrap ErrGenerationFailed.
func (p *GenerationParameters) Normalize(kind Kind) error {
	validationErr, err := Apply(kind, normalizeParameters, p)
	if err != nil {
		return err
	}
	if validationErr != nil {
		return fmt.Errorf("%w: %v", ErrGenerationFailed, validationErr)
	}
	if p.CA != "" {
		// Signer lookups compare normalized names.
		if p.CA, err = NormalizeName(p.CA); err != nil {
			return fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
	}
	return nil
}

// NewRegenerationRequest rebuilds the generation request that reissues c under the
// same name with overwrite enabled. Password, SSH and RSA credentials without stored
// parameters are regenerated with defaults. Value credentials, and certificates that
// were not generated, return ErrCannotRegenerate.
func NewRegenerationRequest(c *Credential) (*GenerationRequest, error) {
	params, err := Apply(c.Kind, regenerationParameters, c.GenerationParameters)
	if err != nil {
		return nil, err
	}
	if params == nil {
		return nil, ErrCannotRegenerate
	}
	if err := params.Normalize(c.Kind); err != nil {
		return nil, err
	}
	return &GenerationRequest{
		Name:       c.Name,
		Kind:       c.Kind,
		Parameters: params,
		Overwrite:  true,
	}, nil
}
