package sql

import "embed"

// Migrations holds the schema DDL, applied in file name order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/find_dataset.sql
var FindDataset string

//go:embed queries/register_dataset.sql
var RegisterDataset string

//go:embed queries/register_table.sql
var RegisterTable string

//go:embed queries/delete_dataset.sql
var DeleteDataset string

//go:embed queries/list_datasets.sql
var ListDatasets string

//go:embed queries/resolve_dataset.sql
var ResolveDataset string

//go:embed queries/select_tables.sql
var SelectTables string

//go:embed queries/select_rows.sql
var SelectRows string
