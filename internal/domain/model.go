package domain

import "time"

// Model is the immutable artifact produced by fitting the training corpus:
// a TF-IDF weighting over the symptom-token vocabulary and a multinomial
// naive Bayes classifier over the weighted features. A Model is never
// mutated after construction; retraining builds a fresh one and the engine
// publishes it with an atomic swap.
type Model struct {
	// Labels holds the distinct disease labels observed in the corpus,
	// sorted ascending. Classifier output indexes into this slice.
	Labels []string `json:"labels"`

	// Vocabulary maps each symptom token seen during training to its
	// feature column. Tokens are sorted before assignment so identical
	// corpora always yield identical column layouts.
	Vocabulary map[string]int `json:"vocabulary"`

	// IDF holds the smoothed inverse document frequency per feature column.
	IDF []float64 `json:"idf"`

	// ClassLogPrior holds ln(classCount/exampleCount) per label.
	ClassLogPrior []float64 `json:"class_log_prior"`

	// FeatureLogProb holds the Lidstone-smoothed log likelihood of each
	// feature given each label, indexed [label][column].
	FeatureLogProb [][]float64 `json:"feature_log_prob"`

	// ExampleCount is the corpus size the model was fitted from.
	ExampleCount int `json:"example_count"`

	// TrainedAt records when fitting completed.
	TrainedAt time.Time `json:"trained_at"`
}
