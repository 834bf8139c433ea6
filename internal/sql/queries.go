package sql

import "embed"

// Migrations holds the schema DDL, applied in filename order.
//
//go:embed migrations/*.sql
var Migrations embed.FS

//go:embed queries/register_load_batch.sql
var RegisterLoadBatch string

//go:embed queries/lookup_loaded_batch.sql
var LookupLoadedBatch string

//go:embed queries/update_batch_status.sql
var UpdateBatchStatus string

//go:embed queries/finalize_batch.sql
var FinalizeBatch string

//go:embed queries/prune_older_batches.sql
var PruneOlderBatches string

//go:embed queries/delete_batch_rows.sql
var DeleteBatchRows string

//go:embed queries/analyze_activity.sql
var AnalyzeActivity string
