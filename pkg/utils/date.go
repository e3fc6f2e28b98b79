package utils

import (
	"log"
	"time"
)

func GetISTTimeLocation() *time.Location {
	loc, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		log.Fatal("Failed to load location", err)
	}
	return loc
}

func TimeNowIST() time.Time {
	return time.Now().In(GetISTTimeLocation())
}

// RunDate is the calendar day a pipeline run belongs to, in exchange time.
func RunDate(t time.Time) string {
	return t.In(GetISTTimeLocation()).Format("2006-01-02")
}

func TodayRunDate() string {
	return RunDate(TimeNowIST())
}
