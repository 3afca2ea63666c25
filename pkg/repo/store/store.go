// Package store picks the repository backend named by STORE_DRIVER.
package store

import (
	"sync"

	"github.com/scienceol/chemtrack/internal/config"
	"github.com/scienceol/chemtrack/pkg/repo"
	"github.com/scienceol/chemtrack/pkg/repo/account"
	"github.com/scienceol/chemtrack/pkg/repo/activity"
	"github.com/scienceol/chemtrack/pkg/repo/alert"
	"github.com/scienceol/chemtrack/pkg/repo/inventory"
	"github.com/scienceol/chemtrack/pkg/repo/memory"
	"github.com/scienceol/chemtrack/pkg/repo/notification"
	"github.com/scienceol/chemtrack/pkg/repo/user"
)

type Store struct {
	Tx            repo.Transactor
	Users         repo.UserRepo
	Inventory     repo.InventoryRepo
	Account       repo.AccountRepo
	Notifications repo.NotificationRepo
	Alerts        repo.AlertRepo
	Activity      repo.ActivityLogRepo
}

var (
	once sync.Once
	st   *Store
)

func New() *Store {
	once.Do(func() {
		if config.Global().Store.Driver == config.StoreMemory {
			st = FromMemory(memory.Shared())
			return
		}
		users := user.New()
		st = &Store{
			Tx:            users,
			Users:         users,
			Inventory:     inventory.New(),
			Account:       account.New(),
			Notifications: notification.New(),
			Alerts:        alert.New(),
			Activity:      activity.New(),
		}
	})
	return st
}

// FromMemory wires every repository to one in-memory store.
func FromMemory(m *memory.Store) *Store {
	return &Store{
		Tx:            m,
		Users:         m,
		Inventory:     m,
		Account:       m,
		Notifications: m,
		Alerts:        m,
		Activity:      m,
	}
}
