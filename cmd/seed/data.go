package main

import "alcyxob/fitplanhub/internal/domain"

type seedAccount struct {
	name           string
	email          string
	password       string
	certifications string
}

var seedUsers = []seedAccount{
	{name: "John Doe", email: "john@example.com", password: "password123"},
	{name: "Sarah Smith", email: "sarah@example.com", password: "password123"},
	{name: "Mike Johnson", email: "mike@example.com", password: "password123"},
	{name: "Emily Davis", email: "emily@example.com", password: "password123"},
	{name: "David Wilson", email: "david@example.com", password: "password123"},
}

var seedTrainers = []seedAccount{
	{name: "Alex Fitness", email: "alex@trainer.com", password: "trainer123", certifications: "NASM-CPT, Nutrition Specialist"},
	{name: "Jessica Strong", email: "jessica@trainer.com", password: "trainer123", certifications: "ACE-CPT, Yoga Instructor"},
	{name: "Marcus Power", email: "marcus@trainer.com", password: "trainer123", certifications: "ISSA-CFT, Strength Coach"},
	{name: "Linda Wellness", email: "linda@trainer.com", password: "trainer123", certifications: "ACSM-CPT, Wellness Coach"},
}

type seedPlan struct {
	title       string
	description string
	price       float64
	duration    int
	category    domain.PlanCategory
	difficulty  domain.Difficulty
	tags        []string
	exercises   []domain.PlanExercise
}

var (
	fullBody = []domain.PlanExercise{
		{Name: "Goblet Squat", Sets: 3, Reps: 12},
		{Name: "Push-up", Sets: 3, Reps: 10},
		{Name: "Dumbbell Row", Sets: 3, Reps: 12},
	}
	conditioning = []domain.PlanExercise{
		{Name: "Burpee", Sets: 5, Reps: 15},
		{Name: "Mountain Climber", Sets: 4, Reps: 30},
		{Name: "Jump Squat", Sets: 4, Reps: 20},
	}
	mobility = []domain.PlanExercise{
		{Name: "Sun Salutation", Sets: 3, Reps: 5, Description: "Slow and controlled"},
		{Name: "Pigeon Pose", Sets: 2, Reps: 1, Description: "Hold 60 seconds per side"},
	}
	barbell = []domain.PlanExercise{
		{Name: "Back Squat", Sets: 5, Reps: 5},
		{Name: "Bench Press", Sets: 5, Reps: 5},
		{Name: "Deadlift", Sets: 3, Reps: 5},
	}
)

var seedPlans = []seedPlan{
	{
		title:       "Beginner Full Body Workout",
		description: "Perfect for those starting their fitness journey. This 4-week program focuses on building a solid foundation with compound movements and proper form.",
		price:       29.99, duration: 30,
		category: domain.CategoryStrength, difficulty: domain.DifficultyBeginner,
		tags: []string{"Full Body", "Beginner Friendly", "Foundation"}, exercises: fullBody,
	},
	{
		title:       "Advanced HIIT Program",
		description: "High-Intensity Interval Training designed for experienced athletes. Burn fat and build cardiovascular endurance with this challenging 6-week program.",
		price:       49.99, duration: 45,
		category: domain.CategoryCardio, difficulty: domain.DifficultyAdvanced,
		tags: []string{"HIIT", "Fat Loss", "Cardio"}, exercises: conditioning,
	},
	{
		title:       "Yoga & Flexibility Master",
		description: "Improve flexibility, balance, and mental clarity with this comprehensive yoga program. Includes daily routines for all levels.",
		price:       34.99, duration: 60,
		category: domain.CategoryFlexibility, difficulty: domain.DifficultyIntermediate,
		tags: []string{"Yoga", "Flexibility", "Mindfulness"}, exercises: mobility,
	},
	{
		title:       "Weight Loss Transformation",
		description: "Complete 12-week transformation program combining strength training, cardio, and nutrition guidance to help you lose weight sustainably.",
		price:       89.99, duration: 90,
		category: domain.CategoryWeightLoss, difficulty: domain.DifficultyIntermediate,
		tags: []string{"Weight Loss", "Transformation", "Nutrition"}, exercises: conditioning,
	},
	{
		title:       "Powerlifting Fundamentals",
		description: "Master the big three lifts: squat, bench press, and deadlift. This program focuses on building raw strength and proper powerlifting technique.",
		price:       59.99, duration: 60,
		category: domain.CategoryStrength, difficulty: domain.DifficultyAdvanced,
		tags: []string{"Powerlifting", "Strength", "Big Three"}, exercises: barbell,
	},
	{
		title:       "Home Workout Essentials",
		description: "No gym? No problem! This program requires minimal equipment and can be done entirely at home. Perfect for busy professionals.",
		price:       24.99, duration: 30,
		category: domain.CategoryGeneral, difficulty: domain.DifficultyBeginner,
		tags: []string{"Home Workout", "No Equipment", "Convenient"}, exercises: fullBody,
	},
	{
		title:       "Marathon Training Plan",
		description: "16-week comprehensive marathon training program designed to get you from 5K to 42K safely and effectively.",
		price:       79.99, duration: 120,
		category: domain.CategoryEndurance, difficulty: domain.DifficultyAdvanced,
		tags: []string{"Marathon", "Running", "Endurance"},
		exercises: []domain.PlanExercise{
			{Name: "Easy Run", Sets: 1, Description: "45 minutes conversational pace"},
			{Name: "Tempo Run", Sets: 1, Description: "20 minutes at threshold"},
		},
	},
	{
		title:       "Core Strength Builder",
		description: "Develop a rock-solid core with this targeted 6-week program. Improve posture, reduce back pain, and enhance athletic performance.",
		price:       39.99, duration: 45,
		category: domain.CategoryStrength, difficulty: domain.DifficultyIntermediate,
		tags: []string{"Core", "Abs", "Functional Strength"},
		exercises: []domain.PlanExercise{
			{Name: "Plank", Sets: 3, Description: "Hold 45 seconds"},
			{Name: "Dead Bug", Sets: 3, Reps: 12},
			{Name: "Pallof Press", Sets: 3, Reps: 10},
		},
	},
	{
		title:       "Muscle Gain Mass Builder",
		description: "Build serious muscle mass with this comprehensive 12-week hypertrophy program. Includes progressive overload and nutrition guidance.",
		price:       69.99, duration: 90,
		category: domain.CategoryMuscleGain, difficulty: domain.DifficultyIntermediate,
		tags: []string{"Muscle Gain", "Hypertrophy", "Mass Building"}, exercises: barbell,
	},
	{
		title:       "Cardio Kickboxing",
		description: "High-energy kickboxing program that combines martial arts techniques with cardiovascular training. Burn calories and learn self-defense!",
		price:       44.99, duration: 45,
		category: domain.CategoryCardio, difficulty: domain.DifficultyIntermediate,
		tags: []string{"Kickboxing", "Cardio", "Martial Arts"}, exercises: conditioning,
	},
}

var seedReviews = []struct {
	rating  int
	comment string
}{
	{5, "Amazing program! Saw results within 2 weeks. Highly recommended!"},
	{5, "Best investment I made for my fitness. The trainer is very knowledgeable."},
	{4, "Great plan overall. Would love more variety in exercises but very effective."},
	{5, "Exceeded my expectations. Lost 15 pounds and feel stronger than ever!"},
	{4, "Well structured program. Instructions are clear and easy to follow."},
	{5, "Life-changing! This program helped me build confidence and strength."},
	{4, "Solid program for the price. Definitely worth trying."},
	{5, "The best fitness program I have ever tried. Results speak for themselves!"},
}

var seedExerciseResults = []domain.ExerciseResult{
	{ExerciseName: "Squats", SetsCompleted: 3, RepsCompleted: 12, Weight: 135},
	{ExerciseName: "Bench Press", SetsCompleted: 4, RepsCompleted: 10, Weight: 185},
	{ExerciseName: "Deadlifts", SetsCompleted: 3, RepsCompleted: 8, Weight: 225},
	{ExerciseName: "Pull-ups", SetsCompleted: 3, RepsCompleted: 10},
	{ExerciseName: "Shoulder Press", SetsCompleted: 3, RepsCompleted: 12, Weight: 95},
}

var seedMoods = []domain.Mood{
	domain.MoodExcellent, domain.MoodGood, domain.MoodAverage, domain.MoodTired, domain.MoodExhausted,
}
