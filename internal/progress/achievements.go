package progress

import "fmt"

// Achievement identifies a one-time award recorded on the user's document.
// The flag map on the record guards re-awards across sessions.
type Achievement string

const (
	// AchFirstTen fires on the 10th question ever answered.
	AchFirstTen Achievement = "first_10_questions"
	// AchWeekStreak fires the first time the daily streak reaches 7.
	AchWeekStreak Achievement = "streak_7_days"
	// AchFiveInARow fires the first time 5 consecutive answers are correct.
	AchFiveInARow Achievement = "correct_5_row"
)

// correctTotalAchievement returns the flag key guarding a one-time
// cumulative-correct milestone.
func correctTotalAchievement(count int) Achievement {
	return Achievement(fmt.Sprintf("correct_total_%d", count))
}

// bonus pairs an XP amount with the message shown to the user.
type bonus struct {
	xp      int
	message string
}

// oneTimeAchievements maps each one-time achievement to its award.
var oneTimeAchievements = map[Achievement]bonus{
	AchFirstTen:    {xp: 50, message: "First 10 questions: +50 XP"},
	AchWeekStreak:  {xp: 50, message: "7-day streak: +50 XP"},
	AchFiveInARow:  {xp: 20, message: "5 correct in a row: +20 XP"},
}

// dayStreakMilestones awards bonus XP each time the daily streak lands
// exactly on a milestone. Re-awardable: a streak that resets and climbs
// back re-earns the bonus.
var dayStreakMilestones = map[int]int{
	3:   5,
	7:   15,
	14:  30,
	30:  75,
	60:  150,
	100: 500,
}

// correctTotalMilestones awards bonus XP once per exact cumulative correct
// total, guarded by per-milestone achievement flags.
var correctTotalMilestones = map[int]int{
	10:  10,
	25:  25,
	50:  75,
	100: 150,
	200: 300,
}

// consecutiveCorrectMilestones awards bonus XP every time the
// consecutive-correct streak hits the exact value, including after a reset
// and re-climb. Deliberately not flag-guarded: sustained performance is
// rewarded each run.
var consecutiveCorrectMilestones = map[int]int{
	5:  10,
	10: 25,
	20: 75,
}
