/*
Package inmem implements the asset store interface. This implementation is meant
to get a dashboard up and running quickly without a need to setup a dedicated DB.
Assets do not survive a restart, so it is recommended for test environments and
demos only.
*/
package inmem
