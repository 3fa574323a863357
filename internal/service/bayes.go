package service

import (
	"math"
	"sort"
	"time"

	"github.com/symptom-intake-server/internal/domain"
)

// smoothingAlpha is the Lidstone smoothing constant for the multinomial
// naive Bayes likelihoods.
const smoothingAlpha = 1.0

// fitModel builds an immutable Model from the corpus: bag-of-symptom-tokens
// vectorization, smoothed TF-IDF weighting with l2 document normalization,
// then a multinomial naive Bayes fit over the weighted features.
//
// Vocabulary and label columns are assigned in sorted order so that fitting
// the same corpus twice yields models that agree on every prediction.
func fitModel(corpus []domain.TrainingExample) (*domain.Model, error) {
	if len(corpus) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	docs := make([]domain.SymptomSet, len(corpus))
	labels := make([]string, len(corpus))
	labelSet := make(map[string]struct{})
	tokenSet := make(map[string]struct{})

	for i, example := range corpus {
		docs[i] = example.Symptoms.Normalize()
		labels[i] = example.Disease
		labelSet[example.Disease] = struct{}{}
		for _, token := range docs[i] {
			tokenSet[token] = struct{}{}
		}
	}

	model := &domain.Model{
		Labels:       sortedKeys(labelSet),
		Vocabulary:   make(map[string]int, len(tokenSet)),
		ExampleCount: len(corpus),
		TrainedAt:    time.Now().UTC(),
	}
	for i, token := range sortedKeys(tokenSet) {
		model.Vocabulary[token] = i
	}

	labelIndex := make(map[string]int, len(model.Labels))
	for i, label := range model.Labels {
		labelIndex[label] = i
	}

	// Smoothed IDF: ln((1+n)/(1+df)) + 1.
	n := float64(len(docs))
	df := make([]float64, len(model.Vocabulary))
	for _, doc := range docs {
		for _, token := range doc {
			df[model.Vocabulary[token]]++
		}
	}
	model.IDF = make([]float64, len(df))
	for i := range df {
		model.IDF[i] = math.Log((1+n)/(1+df[i])) + 1
	}

	// Accumulate l2-normalized TF-IDF mass per label.
	featureSum := make([][]float64, len(model.Labels))
	for i := range featureSum {
		featureSum[i] = make([]float64, len(model.Vocabulary))
	}
	classCount := make([]float64, len(model.Labels))

	for i, doc := range docs {
		vec := vectorize(doc, model)
		li := labelIndex[labels[i]]
		classCount[li]++
		for col, w := range vec {
			featureSum[li][col] += w
		}
	}

	model.ClassLogPrior = make([]float64, len(model.Labels))
	model.FeatureLogProb = make([][]float64, len(model.Labels))
	vocabSize := float64(len(model.Vocabulary))
	for li := range model.Labels {
		model.ClassLogPrior[li] = math.Log(classCount[li] / n)

		total := 0.0
		for _, w := range featureSum[li] {
			total += w
		}
		model.FeatureLogProb[li] = make([]float64, len(model.Vocabulary))
		denom := math.Log(total + smoothingAlpha*vocabSize)
		for col, w := range featureSum[li] {
			model.FeatureLogProb[li][col] = math.Log(w+smoothingAlpha) - denom
		}
	}

	return model, nil
}

// vectorize turns a normalized symptom set into its sparse l2-normalized
// TF-IDF representation, keyed by feature column. Tokens outside the model
// vocabulary are silently dropped.
func vectorize(symptoms domain.SymptomSet, model *domain.Model) map[int]float64 {
	vec := make(map[int]float64, len(symptoms))
	for _, token := range symptoms {
		if col, ok := model.Vocabulary[token]; ok {
			vec[col] += model.IDF[col]
		}
	}

	var norm float64
	for _, w := range vec {
		norm += w * w
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for col := range vec {
			vec[col] /= norm
		}
	}
	return vec
}

// classify computes the posterior distribution over the model's labels for
// a normalized, non-empty symptom set and returns the arg-max label with
// its probability. Ties resolve to the lexicographically smallest label
// because labels are stored sorted.
func classify(model *domain.Model, symptoms domain.SymptomSet) (string, float64) {
	vec := vectorize(symptoms, model)

	joint := make([]float64, len(model.Labels))
	for li := range model.Labels {
		score := model.ClassLogPrior[li]
		for col, w := range vec {
			score += w * model.FeatureLogProb[li][col]
		}
		joint[li] = score
	}

	// Softmax via log-sum-exp for numerical stability.
	maxJoint := joint[0]
	for _, v := range joint[1:] {
		if v > maxJoint {
			maxJoint = v
		}
	}
	var sum float64
	for _, v := range joint {
		sum += math.Exp(v - maxJoint)
	}
	logSum := maxJoint + math.Log(sum)

	best, bestProb := 0, math.Exp(joint[0]-logSum)
	for li := 1; li < len(joint); li++ {
		p := math.Exp(joint[li] - logSum)
		if p > bestProb {
			best, bestProb = li, p
		}
	}
	return model.Labels[best], bestProb
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
