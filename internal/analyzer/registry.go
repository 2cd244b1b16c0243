package analyzer

import "fmt"

// VariantThresholds returns the threshold preset behind a variant name.
func VariantThresholds(variant string) (Thresholds, error) {
	switch variant {
	case "basic":
		return BasicThresholds(), nil
	case "scored", "":
		return ScoredThresholds(), nil
	case "strict":
		return StrictThresholds(), nil
	case "ocr":
		return Thresholds{}, fmt.Errorf("OCR-assisted classifier not yet implemented")
	default:
		return Thresholds{}, fmt.Errorf("unknown classifier variant: %s", variant)
	}
}

// ForVariant creates a classifier from a named threshold preset.
func ForVariant(variant string) (*Classifier, error) {
	t, err := VariantThresholds(variant)
	if err != nil {
		return nil, err
	}
	return NewClassifier(t), nil
}
