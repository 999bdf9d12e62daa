package bootsig

import "fmt"

// ShortImagePolicy selects what Write does with images shorter than SectorSize.
type ShortImagePolicy int

const (
	// PolicyPad zero-fills the image up to Offset before writing the signature.
	PolicyPad ShortImagePolicy = iota
	// PolicyReject fails with ErrShortImage and leaves the image unmodified.
	PolicyReject
)

// String returns the flag spelling of p.
func (p ShortImagePolicy) String() string {
	switch p {
	case PolicyPad:
		return "pad"
	case PolicyReject:
		return "reject"
	default:
		return fmt.Sprintf("ShortImagePolicy(%d)", int(p))
	}
}

// ParseShortImagePolicy parses "pad" or "reject".
func ParseShortImagePolicy(s string) (ShortImagePolicy, error) {
	switch s {
	case "pad":
		return PolicyPad, nil
	case "reject":
		return PolicyReject, nil
	default:
		return 0, fmt.Errorf("unknown short image policy %q (want pad or reject)", s)
	}
}

// Set implements pflag.Value.
func (p *ShortImagePolicy) Set(s string) error {
	v, err := ParseShortImagePolicy(s)
	if err != nil {
		return err
	}
	*p = v
	return nil
}

// Type implements pflag.Value.
func (p *ShortImagePolicy) Type() string {
	return "policy"
}
