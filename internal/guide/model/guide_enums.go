package model

type Level string

const (
	LevelJunior       Level = "JUNIOR"
	LevelIntermediate Level = "INTERMEDIATE"
	LevelSenior       Level = "SENIOR"
	LevelGold         Level = "GOLD"
)
