package agent

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/helios-protocol/helios/internal/model"
)

// Finding is a single rule match produced by the KnownFactsAgent.
type Finding struct {
	Rule        string  `json:"rule"`
	Description string  `json:"description"`
	Confidence  float64 `json:"confidence"`
	// Suspicious marks findings that push the overall verdict towards
	// caution_advised.
	Suspicious bool `json:"suspicious,omitempty"`
	// Advisory findings are recorded in the verdict details but excluded
	// from confidence scoring and the verdict decision.
	Advisory bool `json:"advisory,omitempty"`
}

// SubmitterProfile is one row of the agent's submitter reputation table.
type SubmitterProfile struct {
	Reputation float64
	Category   string
}

// factRule inspects a claim and returns zero or more Findings.
type factRule func(claim *model.Claim) []Finding

// defaultSubmitters is the built-in reputation table. A production
// deployment would load this from configuration.
var defaultSubmitters = map[string]SubmitterProfile{
	"official_press_agency_001": {Reputation: 0.9, Category: "news_outlet"},
	"research_institute_alpha":  {Reputation: 0.85, Category: "science"},
	"known_disinfo_source_xyz":  {Reputation: 0.1, Category: "disinformation_actor"},
}

// KnownFactsAgent checks a claim's submitter and metadata against a fixed
// set of known facts and content-type rules. It emits refinements
// (caution_advised, neutral_no_strong_signal, appears_consistent_with_known_facts)
// that the status transition treats as neutral — the agent advises, it does
// not decide.
type KnownFactsAgent struct {
	info       Info
	submitters map[string]SubmitterProfile
	rules      []factRule
}

// NewKnownFactsAgent returns a KnownFactsAgent loaded with the default
// reputation table and rule set. submitters may be nil to use the built-in
// table.
func NewKnownFactsAgent(submitters map[string]SubmitterProfile) *KnownFactsAgent {
	if submitters == nil {
		submitters = defaultSubmitters
	}
	a := &KnownFactsAgent{
		info:       Info{ID: "known_facts_v1", Version: "0.1.0"},
		submitters: submitters,
	}
	a.rules = []factRule{
		a.ruleSubmitterReputation,
		rulePDFMetadata,
		ruleImageRecommendedMetadata,
		ruleImageProvenance,
	}
	return a
}

// Info implements Verifier.
func (a *KnownFactsAgent) Info() Info { return a.info }

// Verify implements Verifier.
func (a *KnownFactsAgent) Verify(_ context.Context, claim *model.Claim, _ []byte) (model.Verdict, error) {
	var findings []Finding
	for _, r := range a.rules {
		findings = append(findings, r(claim)...)
	}

	suspicious := false
	scored := 0
	total := 0.0
	allStrong := true
	for _, f := range findings {
		if f.Advisory {
			continue
		}
		scored++
		total += f.Confidence
		if f.Suspicious {
			suspicious = true
		}
		if f.Confidence <= 0.7 {
			allStrong = false
		}
	}
	allStrong = allStrong && scored > 0

	kind := model.VerdictKind("neutral_no_strong_signal")
	switch {
	case suspicious:
		kind = model.VerdictCautionAdvised
	case allStrong:
		kind = model.VerdictKind("appears_consistent_with_known_facts")
	}

	avg := 0.5
	if scored > 0 {
		avg = math.Round(total/float64(scored)*100) / 100
	}

	if findings == nil {
		findings = []Finding{}
	}
	v := New(a.info, kind, findings)
	v.Confidence = model.Confidence(avg)
	return v, nil
}

// ── Rules ─────────────────────────────────────────────────────────────────────

func (a *KnownFactsAgent) ruleSubmitterReputation(claim *model.Claim) []Finding {
	profile, known := a.submitters[claim.SubmitterID]
	if !known {
		return []Finding{{
			Rule:        "submitter_reputation",
			Description: fmt.Sprintf("submitter %q not in known list, treated as neutral", claim.SubmitterID),
			Confidence:  0.5,
		}}
	}
	return []Finding{{
		Rule:        "submitter_reputation",
		Description: fmt.Sprintf("submitter %q known, category %s", claim.SubmitterID, profile.Category),
		Confidence:  profile.Reputation,
		Suspicious:  profile.Reputation < 0.3,
	}}
}

// forbiddenAuthors are author values that disqualify PDF metadata.
var forbiddenAuthors = []string{"anonymous_unverified"}

func rulePDFMetadata(claim *model.Claim) []Finding {
	if claim.ContentType != "application/pdf" {
		return nil
	}

	var findings []Finding
	for _, key := range []string{"author", "creation_date"} {
		if _, ok := claim.Metadata[key]; !ok {
			findings = append(findings, Finding{
				Rule:        "pdf_metadata_incomplete",
				Description: "missing mandatory metadata field: " + key,
				Confidence:  0.3,
				Suspicious:  true,
			})
		}
	}

	if author, ok := claim.Metadata["author"].(string); ok {
		for _, forbidden := range forbiddenAuthors {
			if author == forbidden {
				findings = append(findings, Finding{
					Rule:        "pdf_problematic_author",
					Description: fmt.Sprintf("author %q is on the forbidden list", author),
					Confidence:  0.2,
					Suspicious:  true,
				})
			}
		}
	}
	return findings
}

// recommendedImageKeys are metadata fields an image claim should carry.
// Their absence is noted but carries no verdict weight.
var recommendedImageKeys = []string{"camera_model", "gps_location"}

func ruleImageRecommendedMetadata(claim *model.Claim) []Finding {
	if claim.ContentType != "image/jpeg" {
		return nil
	}
	var missing []string
	for _, key := range recommendedImageKeys {
		if _, ok := claim.Metadata[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) == 0 {
		return nil
	}
	return []Finding{{
		Rule:        "image_recommended_metadata_missing",
		Description: "recommended metadata missing: " + strings.Join(missing, ", "),
		Advisory:    true,
	}}
}

// provenanceKeys are the metadata fields whose complete absence on an image
// claim suggests stripped provenance.
var provenanceKeys = []string{"camera_model", "gps_location", "creation_software"}

func ruleImageProvenance(claim *model.Claim) []Finding {
	if claim.ContentType != "image/jpeg" {
		return nil
	}
	for _, key := range provenanceKeys {
		if _, ok := claim.Metadata[key]; ok {
			return nil
		}
	}
	return []Finding{{
		Rule:        "image_provenance_missing",
		Description: "all provenance metadata fields are missing",
		Confidence:  0.25,
		Suspicious:  true,
	}}
}
