package engine_test

import (
	"testing"

	"db-sync/internal/dialect"
	"db-sync/internal/engine"
	"db-sync/internal/schema"

	"github.com/stretchr/testify/require"
)

var mysql = &dialect.MysqlDialect{Version: "8.0.32"}

func ordersTable(name string) *schema.Table {
	t := schema.NewTable(name)
	t.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt, Length: 10, Unsigned: true}, &schema.Nullable{}, &schema.AutoIncrement{}))
	t.AddColumn(schema.NewColumn("created", &schema.TimeType{T: schema.TypeDatetime}, &schema.Nullable{}))
	pk := schema.NewIndex(schema.IndexPrimary, "PRIMARY")
	pk.Storage = schema.StorageBTree
	pk.AddColumn(schema.IndexColumn{Name: "id"}, 0)
	t.AddIndex(pk)
	t.AddOption(schema.NewOption(schema.OptionEngine, "InnoDB"))
	return t
}

func withUser(t *schema.Table) *schema.Table {
	t.AddColumn(schema.NewColumn("user_id", &schema.IntegerType{T: schema.TypeInt, Length: 10, Unsigned: true}, &schema.Nullable{}))
	fk := schema.NewForeignKey("fk_"+t.Name+"_user", "users")
	fk.AddColumn(schema.IndexColumn{Name: "user_id"}, 0)
	fk.AddReferenceColumn("id", 0)
	t.AddIndex(fk)
	return t
}

func names(reports []engine.TableReport) []string {
	var out []string
	for _, r := range reports {
		out = append(out, r.Name)
	}
	return out
}

func TestPlan_Identical(t *testing.T) {
	src := []*schema.Table{ordersTable("orders"), withUser(ordersTable("invoices"))}
	dst := []*schema.Table{ordersTable("orders"), withUser(ordersTable("invoices"))}

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan(src, dst)
	require.Empty(t, plan.Statements)
	require.Empty(t, plan.Warnings)
	require.Len(t, plan.Tables, 2)
	for _, r := range plan.Tables {
		require.Equal(t, engine.ActionUnchanged, r.Action)
	}
}

func TestPlan_AddColumn(t *testing.T) {
	src := ordersTable("orders")
	src.AddColumn(schema.NewColumn("total", &schema.FloatingType{T: schema.TypeDecimal, Precision: 10, Scale: 2}, &schema.Nullable{}))

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan([]*schema.Table{src}, []*schema.Table{ordersTable("orders")})
	require.Equal(t, []string{
		"ALTER TABLE `orders` ADD `total` DECIMAL(10,2) NOT NULL AFTER `created`",
	}, plan.Statements)
	require.Equal(t, engine.ActionAlter, plan.Tables[0].Action)
	require.Equal(t, 1, plan.Changes("orders"))
}

func TestPlan_CreateMissing(t *testing.T) {
	src := ordersTable("orders")
	idx := schema.NewIndex(schema.IndexKey, "idx_created")
	idx.Storage = schema.StorageBTree
	idx.AddColumn(schema.IndexColumn{Name: "created"}, 0)
	src.AddIndex(idx)

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan([]*schema.Table{src}, nil)
	require.Equal(t, []string{
		"CREATE TABLE `orders` (`id` INT(10) UNSIGNED NOT NULL,`created` DATETIME NOT NULL) ENGINE=InnoDB",
		"ALTER TABLE `orders` ADD PRIMARY KEY USING BTREE (`id`)",
		"ALTER TABLE `orders` ADD KEY `idx_created` USING BTREE (`created`)",
		"ALTER TABLE `orders` CHANGE `id` `id` INT(10) UNSIGNED NOT NULL AUTO_INCREMENT FIRST",
	}, plan.Statements)
	require.Equal(t, engine.ActionCreate, plan.Tables[0].Action)
}

func TestPlan_DropLeftover(t *testing.T) {
	plan := engine.NewPlanner(mysql, engine.Options{}).Plan(nil, []*schema.Table{ordersTable("legacy")})
	require.Equal(t, []string{"DROP TABLE `legacy`"}, plan.Statements)
	require.Equal(t, []engine.TableReport{{
		Name:       "legacy",
		Action:     engine.ActionDrop,
		Statements: []string{"DROP TABLE `legacy`"},
	}}, plan.Tables)
}

func TestPlan_Order(t *testing.T) {
	changed := ordersTable("b")
	changed.AddOption(schema.NewOption(schema.OptionComment, "bee"))
	src := []*schema.Table{changed, ordersTable("a")}
	dst := []*schema.Table{ordersTable("x"), ordersTable("b"), ordersTable("y")}

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan(src, dst)
	require.Equal(t, []string{"b", "a", "x", "y"}, names(plan.Tables))
	require.Equal(t, "ALTER TABLE `b` COMMENT = 'bee'", plan.Statements[0])
	require.Equal(t, "CREATE TABLE `a` (`id` INT(10) UNSIGNED NOT NULL,`created` DATETIME NOT NULL) ENGINE=InnoDB", plan.Statements[1])
	require.Equal(t, []string{"DROP TABLE `x`", "DROP TABLE `y`"}, plan.Statements[len(plan.Statements)-2:])
	require.Equal(t, engine.Statements(mysql, []*schema.Table{changed, ordersTable("a")}, []*schema.Table{ordersTable("x"), ordersTable("b"), ordersTable("y")}), plan.Statements)
}

func TestPlan_Rename(t *testing.T) {
	src := []*schema.Table{ordersTable("orders")}

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan(src, []*schema.Table{ordersTable("orders_old")})
	require.Equal(t, []engine.Action{engine.ActionCreate, engine.ActionDrop}, []engine.Action{plan.Tables[0].Action, plan.Tables[1].Action})

	dst := []*schema.Table{ordersTable("orders_old")}
	plan = engine.NewPlanner(mysql, engine.Options{Renames: map[string]string{"orders_old": "orders"}}).Plan(src, dst)
	require.Equal(t, []string{"RENAME TABLE `orders_old` TO `orders`"}, plan.Statements)
	require.Equal(t, engine.ActionRename, plan.Tables[0].Action)
	require.Equal(t, "orders_old", plan.Tables[0].Previous)
	require.Equal(t, "orders", dst[0].Name)
}

func TestPlan_OrderByDependencies(t *testing.T) {
	users := ordersTable("users")
	src := []*schema.Table{withUser(ordersTable("orders")), users}

	plan := engine.NewPlanner(mysql, engine.Options{}).Plan(src, nil)
	require.Equal(t, []string{"orders", "users"}, names(plan.Tables))

	plan = engine.NewPlanner(mysql, engine.Options{OrderByDependencies: true}).Plan(src, nil)
	require.Equal(t, []string{"users", "orders"}, names(plan.Tables))
	require.Contains(t, plan.Statements, "ALTER TABLE `orders` ADD CONSTRAINT `fk_orders_user` FOREIGN KEY (`user_id`) REFERENCES `users`(`id`)")
}

func TestPlan_Warnings(t *testing.T) {
	src := schema.NewTable("tickets")
	src.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}))
	src.AddColumn(schema.NewColumn("state", &schema.SetType{T: schema.TypeEnum, Values: []string{"open", "closed"}}, &schema.Nullable{}))

	pg := &dialect.PostgresDialect{}
	plan := engine.NewPlanner(pg, engine.Options{}).Plan([]*schema.Table{src}, nil)
	require.Equal(t, []string{"column tickets.state: type enum"}, plan.Warnings)

	// Unchanged tables are not rendered, so they raise no warning.
	dst := schema.NewTable("tickets")
	dst.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}))
	dst.AddColumn(schema.NewColumn("state", &schema.SetType{T: schema.TypeEnum, Values: []string{"open", "closed"}}, &schema.Nullable{}))
	plan = engine.NewPlanner(pg, engine.Options{}).Plan([]*schema.Table{src}, []*schema.Table{dst})
	require.Empty(t, plan.Statements)
	require.Empty(t, plan.Warnings)
}

func TestPlan_CreateWithComment(t *testing.T) {
	src := schema.NewTable("orders")
	src.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}, &schema.AutoIncrement{}))
	src.AddOption(schema.NewOption(schema.OptionComment, "order book"))

	plan := engine.NewPlanner(&dialect.PostgresDialect{}, engine.Options{}).Plan([]*schema.Table{src}, nil)
	require.Equal(t, []string{
		`CREATE TABLE "orders" ("id" INTEGER NOT NULL GENERATED BY DEFAULT AS IDENTITY)`,
		`COMMENT ON TABLE "orders" IS 'order book'`,
	}, plan.Statements)
	require.Empty(t, plan.Warnings)
}

func TestPlan_AddFirstColumn(t *testing.T) {
	dst := schema.NewTable("orders")
	dst.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}))
	src := schema.NewTable("orders")
	src.AddColumn(schema.NewColumn("total", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}))
	src.AddColumn(schema.NewColumn("id", &schema.IntegerType{T: schema.TypeInt}, &schema.Nullable{}))

	require.Equal(t, []string{
		"ALTER TABLE `orders` ADD `total` INT NOT NULL FIRST",
	}, engine.Statements(mysql, []*schema.Table{src}, []*schema.Table{dst}))
}
