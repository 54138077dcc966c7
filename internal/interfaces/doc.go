// Package interfaces documents the extension points of the application.
//
// # Interface Categories
//
// ## Data Access Interfaces
//
//   - PlantSource: Live catalog streams for view models (internal/viewmodels/plant_list.go)
//   - GardenSource: Live garden streams and planting writes (internal/viewmodels/plant_detail.go)
//   - PlantStore / GardenStore: What the HTTP controllers need (internal/http/stores.go)
//   - Notifier: Table change notifications behind every stream (internal/live/hub.go)
//
// ## Background Work Interfaces
//
//   - PlantInserter: Catalog writes from the seed task (internal/tasks/seed_database.go)
//   - DuePlantingsFinder: Watering scans (internal/tasks/watering_reminders.go)
//   - Enqueuer: Scheduler access to the task queue (internal/scheduler/watering_reminders.go)
//
// ## External Service Interfaces
//
//   - Searcher: Paged photo search (internal/unsplash/client.go)
//   - KeyChecker: Whether photo search is configured (internal/viewmodels/plant_detail.go)
//
// ## Screen State Interfaces
//
//   - SavedState: Per-screen key/value state (internal/viewmodels/state.go),
//     backed by the session store or by an in-memory map
//
// # Adding a New Live Screen
//
//  1. Add a repository method returning a *live.Stream built with
//     live.Watch over the tables it reads.
//
//  2. Add a view model in internal/viewmodels/ that maps or switches that
//     stream, restoring its inputs from SavedState.
//
//  3. Serve snapshots in internal/http/ and push updates from a /ws route.
//
// # Adding a New Background Task
//
//  1. Define the task and its queue in internal/tasks/:
//
//     type HarvestReminderTask struct{}
//
//     func (t HarvestReminderTask) Config() backlite.QueueConfig
//
//     func NewHarvestReminderQueue(provider FinderProvider) backlite.Queue
//
//  2. Register the queue in entrypoint.NewTaskClient before anything
//     enqueues on it.
//
// # Compile-Time Interface Checks
//
// All implementations should include compile-time checks to ensure they satisfy
// their interfaces. This catches missing methods at compile time rather than runtime:
//
//	var _ SomeInterface = (*MyImplementation)(nil)
//
// See checks.go for the checks of this module.
package interfaces
