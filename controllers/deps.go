package controllers

import "fieldpro-backend/services"

// Shared service handles, wired up in main before the router starts.
var (
	Notifier *services.NotifierService
	Payments *services.PaymentService
)
