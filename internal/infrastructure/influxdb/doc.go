// Package influxdb stores device status history in InfluxDB v2.
//
// Every stored status snapshot becomes one point in the device_status
// measurement, tagged with device_id and device_type, with one field per
// numeric or boolean status value. Command and scene outcomes are written
// to device_command and scene_execution.
//
//	client, err := influxdb.Connect(ctx, cfg.InfluxDB)
//	if err != nil {
//	    return err
//	}
//	defer client.Close()
//	client.WriteDeviceStatus(id, deviceType, status, time.Now())
//
// Writes are non-blocking and batched according to batch_size and
// flush_interval; async write errors go to the SetOnError callback.
// InfluxDB is optional.
package influxdb
