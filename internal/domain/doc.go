// Package domain holds the tank and reading entities, the volume and fill
// percentage calculations, and the storage ports consumed by the services.
package domain
