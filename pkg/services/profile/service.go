package profile

import (
	"sync"

	"github.com/nutri-tools/nutri/pkg/models/domain"
)

// Update carries the fields of an update-profile call. Nil fields are left
// untouched.
type Update struct {
	DailyCalorieGoal  *float64
	DietaryPreference *string
	HeightCm          *float64
	WeightKg          *float64
}

// Service owns the goal and profile state. Single writer; reads return
// copies.
type Service struct {
	mu      sync.RWMutex
	profile domain.Profile
}

func NewService() *Service {
	return &Service{
		profile: domain.Profile{DailyCalorieGoal: domain.DefaultDailyCalorieGoal},
	}
}

func (s *Service) Get() domain.Profile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.profile
}

func (s *Service) Update(upd Update) domain.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()

	if upd.DailyCalorieGoal != nil && *upd.DailyCalorieGoal > 0 {
		s.profile.DailyCalorieGoal = *upd.DailyCalorieGoal
	}
	if upd.DietaryPreference != nil {
		s.profile.DietaryPreference = *upd.DietaryPreference
	}
	if upd.HeightCm != nil {
		s.profile.HeightCm = *upd.HeightCm
	}
	if upd.WeightKg != nil {
		s.profile.WeightKg = *upd.WeightKg
	}
	return s.profile
}

// AdjustWater moves the glasses counter by delta, floored at zero.
func (s *Service) AdjustWater(delta int) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.profile.WaterGlasses += delta
	if s.profile.WaterGlasses < 0 {
		s.profile.WaterGlasses = 0
	}
	return s.profile.WaterGlasses
}

// Restore replaces the whole profile, used when loading a persisted snapshot.
func (s *Service) Restore(p domain.Profile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.DailyCalorieGoal <= 0 {
		p.DailyCalorieGoal = domain.DefaultDailyCalorieGoal
	}
	s.profile = p
}

// BMI computes weightKg / (heightCm/100)^2. Missing anthropometrics are an
// expected steady state: non-positive inputs yield no result, not an error.
func BMI(heightCm, weightKg float64) (domain.BMIResult, bool) {
	if heightCm <= 0 || weightKg <= 0 {
		return domain.BMIResult{}, false
	}
	h := heightCm / 100
	value := weightKg / (h * h)
	return domain.BMIResult{Value: value, Band: classify(value)}, true
}

// Band edges are lower-inclusive.
func classify(v float64) domain.BMIBand {
	switch {
	case v < 18.5:
		return domain.BMIUnderweight
	case v < 25:
		return domain.BMINormal
	case v < 30:
		return domain.BMIOverweight
	default:
		return domain.BMIObese
	}
}
