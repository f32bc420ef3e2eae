package services

import "sync"

// ServiceFactory creates and owns the service instances a caller needs,
// so a CLI or other consumer doesn't have to know construction order or
// dependencies between them.
type ServiceFactory struct {
	mu                sync.RWMutex
	containerService  ContainerService
	filesystemService FilesystemService
	initialized       bool
}

// NewServiceFactory creates a new, uninitialized service factory.
func NewServiceFactory() *ServiceFactory {
	return &ServiceFactory{}
}

// Initialize constructs every service. Safe to call more than once.
func (sf *ServiceFactory) Initialize() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if sf.initialized {
		return nil
	}

	sf.containerService = NewContainerService()
	sf.filesystemService = NewFilesystemService(sf.containerService)
	sf.initialized = true
	return nil
}

// ContainerService returns the container service, initializing the factory
// first if needed.
func (sf *ServiceFactory) ContainerService() (ContainerService, error) {
	if err := sf.ensureInitialized(); err != nil {
		return nil, err
	}
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.containerService, nil
}

// FilesystemService returns the filesystem service, initializing the
// factory first if needed.
func (sf *ServiceFactory) FilesystemService() (FilesystemService, error) {
	if err := sf.ensureInitialized(); err != nil {
		return nil, err
	}
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.filesystemService, nil
}

func (sf *ServiceFactory) ensureInitialized() error {
	sf.mu.RLock()
	initialized := sf.initialized
	sf.mu.RUnlock()
	if initialized {
		return nil
	}
	return sf.Initialize()
}

// Shutdown closes every open container and resets the factory.
func (sf *ServiceFactory) Shutdown() error {
	sf.mu.Lock()
	defer sf.mu.Unlock()

	if !sf.initialized {
		return nil
	}

	var err error
	if sf.containerService != nil {
		err = sf.containerService.Close()
	}

	sf.containerService = nil
	sf.filesystemService = nil
	sf.initialized = false
	return err
}

// IsInitialized reports whether Initialize has run.
func (sf *ServiceFactory) IsInitialized() bool {
	sf.mu.RLock()
	defer sf.mu.RUnlock()
	return sf.initialized
}

// DefaultServiceFactory is the package-level factory convenience functions
// operate on.
var DefaultServiceFactory = NewServiceFactory()

// GetContainerService returns the default factory's container service.
func GetContainerService() (ContainerService, error) {
	return DefaultServiceFactory.ContainerService()
}

// GetFilesystemService returns the default factory's filesystem service.
func GetFilesystemService() (FilesystemService, error) {
	return DefaultServiceFactory.FilesystemService()
}

// InitializeServices initializes the default factory.
func InitializeServices() error {
	return DefaultServiceFactory.Initialize()
}

// ShutdownServices shuts down the default factory.
func ShutdownServices() error {
	return DefaultServiceFactory.Shutdown()
}
