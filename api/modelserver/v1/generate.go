package modelserverv1

//go:generate protoc -I ../.. --go_out=paths=source_relative:../.. --go-grpc_out=paths=source_relative:../.. modelserver/v1/inference_service.proto
