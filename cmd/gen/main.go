package main

import (
	"StudyGate/internal/repository"
	"StudyGate/pkg/logger"
)

func main() {
	logger.Init()
	defer logger.Sync()

	repository.RunGenerate()
}
