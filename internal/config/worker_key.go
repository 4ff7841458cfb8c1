package config

type WorkerKeyStruct struct {
	RecalcGPAQueue string
}

var WorkerKey = &WorkerKeyStruct{
	RecalcGPAQueue: "recalc_gpa_queue",
}
