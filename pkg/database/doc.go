// Package database is the data-access layer of the CMS.
//
// A [Manager] builds parameterized SELECT, INSERT, UPDATE and DELETE statements
// from ordered column/value data and runs them on a PostgreSQL connection pool
// ([github.com/jackc/pgx/v5/pgxpool]). Statements are rendered with
// [github.com/Masterminds/squirrel]; table and column names are validated and
// quoted, and only values are ever bound as parameters.
//
// # Connection
//
// [New] returns an unconnected Manager. The pool is opened on first use and
// shared by every caller for the life of the process:
//
//	m := database.New(cfg, database.WithLogger(log))
//	if _, err := m.Connection(ctx); err != nil {
//		log.Error("database unavailable", "error", err)
//		os.Exit(1)
//	}
//	defer m.Close()
//
// [Manager.ConnectToDatabase] points the connection at a schema (search_path).
//
// # Reading
//
//	rows, err := m.Read(ctx, "articles", database.AllColumns(),
//		database.Where("published", true).And("category_id", 3))
//
//	rows, err := m.ReadWithJoin(ctx, "articles",
//		database.PerTable(
//			database.TableColumns{Table: "articles", Columns: []string{"id", "title"}},
//			database.TableColumns{Table: "users", Columns: []string{"username"}},
//		),
//		nil,
//		database.Join{Table: "users", On: "articles.author_id = users.id"},
//	)
//
// Conditions are equality predicates AND-ed in order. Rows preserve the result
// column order.
//
// # Writing
//
//	row, err := m.Create(ctx, "categories", database.Set("name", "News"))
//	id := row.Int64("id")
//
//	_, err = m.Update(ctx, "categories",
//		database.Set("name", "World"),
//		database.Where("id", id))
//
//	_, err = m.Delete(ctx, "categories", database.Where("id", id))
//
// Update rejects a column used in both its values and its conditions
// ([ErrOverlappingColumns]). Update and Delete refuse to run without
// conditions ([ErrNoConditions]).
//
// # Transactions
//
//	err := m.WithTx(ctx, func(tx *database.Manager) error {
//		if _, err := tx.Create(ctx, "articles", values); err != nil {
//			return err
//		}
//		id, err := tx.LastInsertedID(ctx)
//		...
//	})
//
// # Migrations
//
// [Manager.Migrate] applies embedded SQL files with [github.com/pressly/goose/v3].
//
// # Error Handling
//
// Sentinel errors are declared in errors.go. Driver errors are wrapped with
// [github.com/cockroachdb/errors] and stay matchable with errors.Is / errors.As.
package database
