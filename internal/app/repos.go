package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/vitality-backend/internal/data/repos"
	"github.com/yungbote/vitality-backend/internal/pkg/logger"
)

type Repos struct {
	Users      repos.UserRepo
	UserTokens repos.UserTokenRepo
	Videos     repos.VideoRepo
	Reports    repos.ReportRepo
	Research   repos.ResearchRunRepo
	Messages   repos.MessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	return Repos{
		Users:      repos.NewUserRepo(db, log),
		UserTokens: repos.NewUserTokenRepo(db, log),
		Videos:     repos.NewVideoRepo(db, log),
		Reports:    repos.NewReportRepo(db, log),
		Research:   repos.NewResearchRunRepo(db, log),
		Messages:   repos.NewMessageRepo(db, log),
	}
}
