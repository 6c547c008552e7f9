package application

import "github.com/ericfisherdev/repotrend/internal/domain/model"

// DefaultTotalHours is the span a sampled velocity is extrapolated to.
const DefaultTotalHours = 24

// ExtractVelocity sums star and commit counts over the sampled hours and
// scales them linearly to totalHours. The scaling assumes events are spread
// uniformly over the day. Absent counts yield zero velocity.
func ExtractVelocity(raw model.RawCounts, sampledHours []int, totalHours int) model.Velocity {
	if len(raw) == 0 || len(sampledHours) == 0 {
		return model.Velocity{}
	}

	var stars, commits int
	for _, h := range sampledHours {
		c := raw[h]
		stars += c.Stars
		commits += c.Commits
	}

	return model.Velocity{
		StarVelocity:    extrapolate(stars, len(sampledHours), totalHours),
		CommitFrequency: extrapolate(commits, len(sampledHours), totalHours),
	}
}

// extrapolate scales sum observed over sampled hours to total hours,
// truncating toward zero.
func extrapolate(sum, sampled, total int) int {
	if total%sampled == 0 {
		return sum * (total / sampled)
	}
	return int(float64(sum) * float64(total) / float64(sampled))
}
