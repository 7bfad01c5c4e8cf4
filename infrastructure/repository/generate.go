package repository

//go:generate mockgen -source=sales_record.go -destination=mocks/sales_record.go -package=mocks
//go:generate mockgen -source=training_dataset.go -destination=mocks/training_dataset.go -package=mocks
//go:generate mockgen -source=override_event.go -destination=mocks/override_event.go -package=mocks
//go:generate mockgen -source=user.go -destination=mocks/user.go -package=mocks
