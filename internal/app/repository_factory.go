package app

import (
	activityPersistence "github.com/felixgeelhaar/jobflow/internal/activity/infrastructure/persistence"
	projectPersistence "github.com/felixgeelhaar/jobflow/internal/projects/infrastructure/persistence"
	reminderPersistence "github.com/felixgeelhaar/jobflow/internal/reminders/infrastructure/persistence"
	sharedApplication "github.com/felixgeelhaar/jobflow/internal/shared/application"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/database"
	"github.com/felixgeelhaar/jobflow/internal/shared/infrastructure/outbox"
)

// RepositoryFactory creates repositories on one connection. Every
// repository speaks both drivers through database.Rebind, so the factory
// only has to share the connection and its unit of work.
type RepositoryFactory struct {
	conn   database.Connection
	driver database.Driver
}

// NewRepositoryFactory creates a new repository factory.
func NewRepositoryFactory(conn database.Connection) *RepositoryFactory {
	return &RepositoryFactory{
		conn:   conn,
		driver: conn.Driver(),
	}
}

// ProjectRepository creates the project repository.
func (f *RepositoryFactory) ProjectRepository() *projectPersistence.SQLProjectRepository {
	return projectPersistence.NewSQLProjectRepository(f.conn)
}

// ReminderRepository creates the reminder repository.
func (f *RepositoryFactory) ReminderRepository() *reminderPersistence.SQLReminderRepository {
	return reminderPersistence.NewSQLReminderRepository(f.conn)
}

// ActivityRepository creates the activity log repository.
func (f *RepositoryFactory) ActivityRepository() *activityPersistence.SQLActivityRepository {
	return activityPersistence.NewSQLActivityRepository(f.conn)
}

// OutboxRepository creates the outbox repository.
func (f *RepositoryFactory) OutboxRepository() *outbox.SQLRepository {
	return outbox.NewSQLRepository(f.conn)
}

// UnitOfWork creates a unit of work on the factory's connection.
func (f *RepositoryFactory) UnitOfWork() sharedApplication.UnitOfWork {
	return database.NewUnitOfWork(f.conn)
}

// Driver returns the database driver.
func (f *RepositoryFactory) Driver() database.Driver {
	return f.driver
}

// Connection returns the underlying database connection.
func (f *RepositoryFactory) Connection() database.Connection {
	return f.conn
}
