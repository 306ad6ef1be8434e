// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// Answer is the output of the extractive question-answering provider: a
// span grounded in the supplied context plus the provider's confidence.
type Answer struct {
	// Text is the answer span, or a canned insufficient-information
	// response when Confidence fell below the provider threshold.
	Text string `json:"text" yaml:"text"`

	// Confidence is on a [0, 1] scale.
	Confidence float64 `json:"confidence" yaml:"confidence"`
}

// QuestionAnswer is the formatted response of the answering pipeline.
type QuestionAnswer struct {
	// Text is the full domain-flavored response, including the raw answer
	// span, consulted titles, and cross-analysis findings.
	Text string `json:"text" yaml:"text"`

	// ConsultedTitles lists the documents whose content served as context.
	ConsultedTitles []string `json:"consulted_titles" yaml:"consulted_titles"`
}

// RelatedPair records two documents whose similarity exceeded the
// cross-analysis threshold, with the keywords they share.
type RelatedPair struct {
	TitleA         string   `json:"title_a" yaml:"title_a"`
	TitleB         string   `json:"title_b" yaml:"title_b"`
	Similarity     float64  `json:"similarity" yaml:"similarity"`
	SharedKeywords []string `json:"shared_keywords" yaml:"shared_keywords"`
}

// CrossReference flags a document whose content cites empirical research.
type CrossReference struct {
	Title string `json:"title" yaml:"title"`

	// Indicator is the research marker found in the content
	// (e.g. "estudo", "pesquisa").
	Indicator string `json:"indicator" yaml:"indicator"`

	// Relevance is a fixed label; research references are always "alta".
	Relevance string `json:"relevance" yaml:"relevance"`
}

// CrossAnalysis is the descriptive output of analyzing a retrieved
// document set. It enriches formatted answers and never gates retrieval.
type CrossAnalysis struct {
	// RelatedPairs lists document pairs with similarity above the
	// cross-analysis threshold.
	RelatedPairs []RelatedPair `json:"related_pairs" yaml:"related_pairs"`

	// Patterns holds the dominant keywords across the set, most frequent
	// first, at most five.
	Patterns []string `json:"patterns" yaml:"patterns"`

	// CrossReferences flags documents referencing empirical studies.
	CrossReferences []CrossReference `json:"cross_references" yaml:"cross_references"`
}
