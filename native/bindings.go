package native

import (
	"unsafe"

	mpiruntime "github.com/wippyai/mpi-runtime"
)

// Data symbols exported by the Open MPI family of libraries.
const (
	SymCommWorld = "ompi_mpi_comm_world"
	SymCommSelf  = "ompi_mpi_comm_self"
	SymDouble    = "ompi_mpi_double"
)

// Entry points bound at load time.
const (
	FnInit        = "MPI_Init"
	FnCommRank    = "MPI_Comm_rank"
	FnCommSize    = "MPI_Comm_size"
	FnErrorString = "MPI_Error_string"
	FnFinalize    = "MPI_Finalize"
	FnGather      = "MPI_Gather"
	FnBarrier     = "MPI_Barrier"
)

// MaxErrorString is MPI_MAX_ERROR_STRING for the supported library family.
const MaxErrorString = 256

// Symbols holds the predefined native objects the bindings pass by address.
type Symbols struct {
	CommWorld mpiruntime.Handle
	CommSelf  mpiruntime.Handle
	Double    mpiruntime.Handle
}

// Bindings holds one typed Go function per native entry point. Each field is
// bound exactly once by Load with the C signature shown; nothing else may
// construct a call into the library.
type Bindings struct {
	// int MPI_Init(int *argc, char ***argv)
	Init func(argc, argv unsafe.Pointer) mpiruntime.Status
	// int MPI_Comm_rank(MPI_Comm comm, int *rank)
	CommRank func(comm mpiruntime.Handle, rank unsafe.Pointer) mpiruntime.Status
	// int MPI_Comm_size(MPI_Comm comm, int *size)
	CommSize func(comm mpiruntime.Handle, size unsafe.Pointer) mpiruntime.Status
	// int MPI_Error_string(int errorcode, char *string, int *resultlen)
	ErrorString func(code mpiruntime.Status, buf, resultLen unsafe.Pointer) mpiruntime.Status
	// int MPI_Finalize(void)
	Finalize func() mpiruntime.Status
	// int MPI_Gather(const void *sendbuf, int sendcount, MPI_Datatype sendtype,
	//                void *recvbuf, int recvcount, MPI_Datatype recvtype,
	//                int root, MPI_Comm comm)
	Gather func(send unsafe.Pointer, sendCount int32, sendType mpiruntime.Handle,
		recv unsafe.Pointer, recvCount int32, recvType mpiruntime.Handle,
		root int32, comm mpiruntime.Handle) mpiruntime.Status
	// int MPI_Barrier(MPI_Comm comm)
	Barrier func(comm mpiruntime.Handle) mpiruntime.Status
}

type binding struct {
	name string
	fptr any
}

// table lists every entry point with the field it binds into.
func (b *Bindings) table() []binding {
	return []binding{
		{FnInit, &b.Init},
		{FnCommRank, &b.CommRank},
		{FnCommSize, &b.CommSize},
		{FnErrorString, &b.ErrorString},
		{FnFinalize, &b.Finalize},
		{FnGather, &b.Gather},
		{FnBarrier, &b.Barrier},
	}
}

// EntryPoints returns the names of every function Load binds.
func EntryPoints() []string {
	var b Bindings
	t := b.table()
	names := make([]string, len(t))
	for i, e := range t {
		names[i] = e.name
	}
	return names
}

// DataSymbols returns the names of every global datum Load resolves.
func DataSymbols() []string {
	return []string{SymCommWorld, SymCommSelf, SymDouble}
}
