// Package demo generates synthetic intake records for demos and load tests.
package demo

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/symptom-intake-server/internal/domain"
)

var firstNames = []string{
	"Aarav", "Ananya", "Diya", "Ishaan", "Kavya", "Rohan", "Priya", "Arjun",
	"Meera", "Vikram", "Sneha", "Rahul", "Pooja", "Karan", "Nisha", "Aditya",
}

var lastNames = []string{
	"Sharma", "Patel", "Kumar", "Singh", "Reddy", "Gupta", "Iyer", "Nair",
	"Joshi", "Mehta", "Desai", "Rao",
}

// Generator produces synthetic intake records: a random disease profile,
// a majority subset of its symptoms, and occasionally one noise symptom.
// Records from the same seed are reproducible.
type Generator struct {
	rng      *rand.Rand
	profiles domain.ProfileTable
	ordered  []string
	noise    []string
}

// NewGenerator builds a generator over the given profile table. The noise
// pool is every known symptom code, so a noise pick may or may not land
// inside the chosen profile.
func NewGenerator(seed int64, profiles domain.ProfileTable) *Generator {
	normalized := profiles.Normalize()

	ordered := make([]string, 0, len(normalized))
	noiseSet := make(map[string]struct{})
	for disease, symptoms := range normalized {
		ordered = append(ordered, disease)
		for _, code := range symptoms {
			noiseSet[code] = struct{}{}
		}
	}
	sort.Strings(ordered)

	noise := make([]string, 0, len(noiseSet))
	for code := range noiseSet {
		noise = append(noise, code)
	}
	sort.Strings(noise)

	return &Generator{
		rng:      rand.New(rand.NewSource(seed)),
		profiles: normalized,
		ordered:  ordered,
		noise:    noise,
	}
}

// Record produces one synthetic intake record without a prediction.
func (g *Generator) Record() *domain.IntakeRecord {
	disease := g.ordered[g.rng.Intn(len(g.ordered))]
	profile := g.profiles[disease]

	// Report 70-100% of the profile so predictions stay plausible but
	// imperfect.
	count := len(profile) * (70 + g.rng.Intn(31)) / 100
	if count < 1 {
		count = 1
	}

	picked := g.rng.Perm(len(profile))[:count]
	symptoms := make(domain.SymptomSet, 0, count+1)
	for _, i := range picked {
		symptoms = append(symptoms, profile[i])
	}
	if g.rng.Float64() < 0.2 {
		symptoms = append(symptoms, g.noise[g.rng.Intn(len(g.noise))])
	}

	admitted := time.Now().AddDate(0, 0, -g.rng.Intn(730))

	return &domain.IntakeRecord{
		Name:          g.name(),
		Phone:         g.phone(),
		AdmissionDate: admitted.Format("2006-01-02"),
		Symptoms:      symptoms.Normalize(),
	}
}

// Records produces n synthetic records.
func (g *Generator) Records(n int) []*domain.IntakeRecord {
	records := make([]*domain.IntakeRecord, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, g.Record())
	}
	return records
}

func (g *Generator) name() string {
	return firstNames[g.rng.Intn(len(firstNames))] + " " + lastNames[g.rng.Intn(len(lastNames))]
}

func (g *Generator) phone() string {
	// Ten digits, leading 9 like the seeded demo data.
	return fmt.Sprintf("9%09d", g.rng.Intn(1_000_000_000))
}

// Seed generates n records, runs each through the classifier and stores the
// result, mirroring what the intake API does on create.
func Seed(ctx context.Context, g *Generator, engine domain.Classifier, repo domain.IntakeRepository, n int) error {
	for _, record := range g.Records(n) {
		prediction := engine.Predict(record.Symptoms)
		record.Disease = prediction.Disease
		record.Confidence = prediction.Confidence
		record.Status = domain.StatusFor(prediction)

		if err := repo.Create(ctx, record); err != nil {
			return fmt.Errorf("seeding demo record: %w", err)
		}
	}
	return nil
}
