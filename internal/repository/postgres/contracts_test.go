package postgres

import (
	customerdomain "github.com/creditline/backend/internal/domain/customer"
	loandomain "github.com/creditline/backend/internal/domain/loan"
	"github.com/creditline/backend/internal/ingest"
	"github.com/creditline/backend/internal/jobs"
	"github.com/creditline/backend/internal/ws"
)

var (
	_ customerdomain.Repository = (*CustomerRepository)(nil)
	_ loandomain.Repository     = (*LoanRepository)(nil)
	_ loandomain.EventRecorder  = (*EventRepository)(nil)
	_ ws.EventRepository        = (*EventRepository)(nil)
	_ jobs.OutboxRepository     = (*OutboxRepository)(nil)
	_ jobs.CustomerRepository   = (*CustomerRepository)(nil)
	_ ingest.CustomerRepository = (*CustomerRepository)(nil)
	_ ingest.LoanRepository     = (*LoanRepository)(nil)
)
