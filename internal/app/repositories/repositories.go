package repositories

import (
	"github.com/yigit/examportal/internal/db"
)

// Repositories holds all the repository instances
type Repositories struct {
	HierarchyRepository *HierarchyRepository
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	return &Repositories{
		HierarchyRepository: NewHierarchyRepository(database),
	}
}
