package gormstore

import (
	"context"
	"time"

	"gorm.io/gorm"
)

const errorCodeSeed = "seed"

// Seed populates any empty collection with the first-run fixtures: one
// admin, two students, five events in mixed statuses, and one active
// election with three candidates. Collections that already hold rows are
// left untouched, so restarting never re-seeds. Bets and votes start empty.
func (store *Store) Seed(ctx context.Context, now time.Time) error {
	now = now.UTC()
	err := store.db.WithContext(ctx).Transaction(func(transaction *gorm.DB) error {
		if err := seedUsers(transaction, now); err != nil {
			return err
		}
		if err := seedEvents(transaction, now); err != nil {
			return err
		}
		return seedElections(transaction, now)
	})
	if err != nil {
		return wrapStoreError(errorSubjectUser, errorCodeSeed, err)
	}
	return nil
}

func seedUsers(transaction *gorm.DB, now time.Time) error {
	var total int64
	if err := transaction.Model(&User{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	users := []User{
		{
			UserID:    "u_admin",
			Name:      "Admin User",
			Email:     "admin@fitmat.edu",
			StudentID: "ADMIN001",
			Role:      "admin",
			Balance:   10000,
			Age:       25,
			Verified:  true,
			CreatedAt: now,
		},
		{
			UserID:    "u_student1",
			Name:      "Jane Doe",
			Email:     "jane@fitmat.edu",
			StudentID: "S12345",
			Role:      "student",
			Balance:   1500,
			Age:       20,
			Verified:  true,
			CreatedAt: now,
		},
		{
			UserID:    "u_student2",
			Name:      "John Smith",
			Email:     "john@fitmat.edu",
			StudentID: "S12346",
			Role:      "student",
			Balance:   2000,
			Age:       21,
			Verified:  true,
			CreatedAt: now,
		},
	}
	return transaction.Create(&users).Error
}

func seedEvents(transaction *gorm.DB, now time.Time) error {
	var total int64
	if err := transaction.Model(&Event{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	liveHome, liveAway := 2, 1
	finishedHome, finishedAway := 5, 3
	events := []Event{
		{
			EventID:    "m_001",
			Tournament: "Inter-FITMAT Cup",
			HomeTeam:   "Blue Falcons",
			AwayTeam:   "Red Lions",
			StartAt:    now.Add(2 * 24 * time.Hour),
			Status:     "upcoming",
			OddsHome:   1.75,
			OddsDraw:   3.25,
			OddsAway:   4.2,
		},
		{
			EventID:    "m_002",
			Tournament: "Basketball Championship",
			HomeTeam:   "Thunder Hawks",
			AwayTeam:   "Storm Eagles",
			StartAt:    now.Add(3 * 24 * time.Hour),
			Status:     "upcoming",
			OddsHome:   2.1,
			OddsDraw:   15.0,
			OddsAway:   1.8,
		},
		{
			EventID:    "m_003",
			Tournament: "Volleyball Tournament",
			HomeTeam:   "Fire Phoenixes",
			AwayTeam:   "Ice Dragons",
			StartAt:    now.Add(1 * 24 * time.Hour),
			Status:     "live",
			OddsHome:   1.9,
			OddsDraw:   10.0,
			OddsAway:   2.2,
			ScoreHome:  &liveHome,
			ScoreAway:  &liveAway,
		},
		{
			EventID:    "m_004",
			Tournament: "Track & Field",
			HomeTeam:   "Swift Cheetahs",
			AwayTeam:   "Fast Leopards",
			StartAt:    now.Add(-1 * 24 * time.Hour),
			Status:     "finished",
			OddsHome:   1.5,
			OddsDraw:   8.0,
			OddsAway:   3.5,
			ScoreHome:  &finishedHome,
			ScoreAway:  &finishedAway,
		},
		{
			EventID:    "m_005",
			Tournament: "Tennis Open",
			HomeTeam:   "Net Masters",
			AwayTeam:   "Court Kings",
			StartAt:    now.Add(5 * 24 * time.Hour),
			Status:     "upcoming",
			OddsHome:   2.5,
			OddsDraw:   20.0,
			OddsAway:   1.6,
		},
	}
	return transaction.Create(&events).Error
}

func seedElections(transaction *gorm.DB, now time.Time) error {
	var total int64
	if err := transaction.Model(&Election{}).Count(&total).Error; err != nil {
		return err
	}
	if total > 0 {
		return nil
	}
	election := Election{
		ElectionID:  "e_001",
		Title:       "School Prefect Election 2026",
		StartAt:     now.Add(-1 * 24 * time.Hour),
		EndAt:       now.Add(7 * 24 * time.Hour),
		Status:      "active",
		Eligibility: "all_students",
	}
	if err := transaction.Create(&election).Error; err != nil {
		return err
	}
	candidates := []Candidate{
		{
			ElectionID:  election.ElectionID,
			CandidateID: "c1",
			Name:        "Amina Hassan",
			Manifesto:   "I will work to improve student welfare, promote inclusivity, and create more opportunities for extracurricular activities.",
			Photo:       "👩‍🎓",
			ColorIndex:  1,
			Position:    0,
		},
		{
			ElectionID:  election.ElectionID,
			CandidateID: "c2",
			Name:        "Baba Mensah",
			Manifesto:   "My focus is on academic excellence, better facilities, and stronger communication between students and administration.",
			Photo:       "👨‍🎓",
			ColorIndex:  2,
			Position:    1,
		},
		{
			ElectionID:  election.ElectionID,
			CandidateID: "c3",
			Name:        "Chioma Okafor",
			Manifesto:   "I promise to enhance campus security, organize more social events, and support mental health initiatives.",
			Photo:       "👩‍💼",
			ColorIndex:  3,
			Position:    2,
		},
	}
	return transaction.Create(&candidates).Error
}
